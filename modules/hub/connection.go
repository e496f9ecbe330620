package hub

import (
	"sync"
	"sync/atomic"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// DefaultOutboxSize is the number of frames buffered per connection.
const DefaultOutboxSize = 64

// Transport is the write side of one client channel.
type Transport interface {
	WriteText(text string) error
	Close() error
}

// Connection is one live client channel. Frames are queued on a bounded
// outbox and written by a dedicated goroutine, so delivery to a single
// connection is FIFO and a slow or dead peer never blocks the sender.
type Connection struct {
	id        string
	transport Transport
	logger    types.Logger

	mu       sync.Mutex // guards identity, closed and sends on outbox
	identity domain.Identity
	closed   bool
	outbox   chan string

	dead atomic.Bool
	done chan struct{}

	// detached is set once the directory has dropped the connection on
	// unregister. Guarded by Directory.mu.
	detached bool
}

// NewConnection wraps a transport and starts its writer.
func NewConnection(transport Transport, outboxSize int, logger types.Logger) *Connection {
	if outboxSize <= 0 {
		outboxSize = DefaultOutboxSize
	}
	c := &Connection{
		id:        uuid.New().String(),
		transport: transport,
		logger:    logger,
		outbox:    make(chan string, outboxSize),
		done:      make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// ID returns the connection id.
func (c *Connection) ID() string {
	return c.id
}

// Identity returns the user that owns the connection. It is empty until
// the connection is registered.
func (c *Connection) Identity() domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Done is closed once the writer has stopped and the transport is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Send queues one text frame. It reports false when the connection is
// closed, its last write failed or its outbox is full.
func (c *Connection) Send(text string) bool {
	if c.dead.Load() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.outbox <- text:
		return true
	default:
		// A peer that cannot keep up is treated like a dead one.
		c.logger.Warn("Outbox full, dropping connection", "connectionID", c.id)
		c.markDead()
		return false
	}
}

func (c *Connection) setIdentity(identity domain.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

// close stops accepting frames. Queued frames are still written before the
// transport is closed.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

// markDead closes the transport so the reader side notices the failure and
// unregisters the connection.
func (c *Connection) markDead() {
	if c.dead.CompareAndSwap(false, true) {
		_ = c.transport.Close()
	}
}

func (c *Connection) writeLoop() {
	defer close(c.done)

	for text := range c.outbox {
		if c.dead.Load() {
			continue
		}
		if err := c.transport.WriteText(text); err != nil {
			c.logger.Warn("Failed to send to connection", "connectionID", c.id, "error", err)
			c.markDead()
		}
	}

	if c.dead.CompareAndSwap(false, true) {
		_ = c.transport.Close()
	}
}
