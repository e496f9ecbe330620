package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/errgroup"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// closeConcurrency bounds how many connections CloseAll drains at once.
const closeConcurrency = 16

var (
	// ErrEmptyIdentity is returned when registering a connection without an owner.
	ErrEmptyIdentity = errors.New("identity cannot be empty")
	// ErrConnectionClosed is returned when a connection that was already
	// unregistered tries to create or join a room.
	ErrConnectionClosed = errors.New("connection is no longer registered")
)

// Detacher releases whatever state a connection holds outside the registry.
// It runs exactly once per registered connection, on unregister.
type Detacher interface {
	Detach(conn *Connection)
}

// Registry tracks live connections and the identity that owns each one.
type Registry struct {
	mu        sync.RWMutex
	conns     map[*Connection]domain.Identity
	detachers []Detacher
	logger    types.Logger
}

// NewRegistry creates an empty registry. Detachers are invoked in order
// whenever a connection is unregistered.
func NewRegistry(logger types.Logger, detachers ...Detacher) *Registry {
	return &Registry{
		conns:     make(map[*Connection]domain.Identity),
		detachers: detachers,
		logger:    logger,
	}
}

// Register adds a connection owned by identity. A user may hold several
// connections at once.
func (r *Registry) Register(conn *Connection, identity domain.Identity) error {
	if identity == "" {
		return ErrEmptyIdentity
	}

	r.mu.Lock()
	conn.setIdentity(identity)
	r.conns[conn] = identity
	r.mu.Unlock()

	r.logger.Info("Connection registered", "connectionID", conn.ID(), "userID", identity)
	return nil
}

// Unregister removes a connection, detaches it from any room and closes
// it. Calling it again for the same connection is a no-op.
func (r *Registry) Unregister(conn *Connection) {
	r.mu.Lock()
	identity, ok := r.conns[conn]
	delete(r.conns, conn)
	r.mu.Unlock()

	if !ok {
		return
	}

	for _, d := range r.detachers {
		d.Detach(conn)
	}
	conn.close()

	r.logger.Info("Connection unregistered", "connectionID", conn.ID(), "userID", identity)
}

// IsRegistered reports whether conn is currently registered.
func (r *Registry) IsRegistered(conn *Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[conn]
	return ok
}

// IdentityOf returns the owner of a registered connection.
func (r *Registry) IdentityOf(conn *Connection) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.conns[conn]
	return identity, ok
}

// SendTo delivers text to a single connection. Delivery failures are
// logged and otherwise ignored.
func (r *Registry) SendTo(conn *Connection, text string) {
	if !conn.Send(text) {
		r.logger.Debug("Dropped frame for closed connection", "connectionID", conn.ID())
	}
}

// Broadcast delivers text to every registered connection except exclude,
// which may be nil. It returns the number of connections that accepted
// the frame.
func (r *Registry) Broadcast(text string, exclude *Connection) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for conn := range r.conns {
		if conn == exclude {
			continue
		}
		if conn.Send(text) {
			delivered++
		} else {
			r.logger.Debug("Broadcast skipped closed connection", "connectionID", conn.ID())
		}
	}
	return delivered
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll unregisters every connection and waits for their writers to
// flush, or for ctx to end.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(closeConcurrency)
	for _, conn := range conns {
		g.Go(func() error {
			r.Unregister(conn)
			select {
			case <-conn.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}
