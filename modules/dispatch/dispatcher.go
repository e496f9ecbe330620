// Package dispatch routes inbound chat frames to handlers by their type.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/chatroom-playground/domain/chat"
	"github.com/example/chatroom-playground/modules/hub"
)

// System replies that do not depend on a handler.
const (
	MsgInvalidJSON = "[System] Invalid JSON format. Please send valid JSON."
	MsgUnknownType = "[System] Unknown message type: %s"
	MsgHandlerErr  = "[System] Error processing message: %v"
)

// Request is one decoded frame together with the connection it came from.
type Request struct {
	Conn     *hub.Connection
	Identity domain.Identity
	Envelope domain.Envelope
}

// HandlerFunc handles one message type. A returned error is reported to the
// sender as a system line; the connection stays open.
type HandlerFunc func(ctx context.Context, req *Request) error

// Middleware wraps the handler registered for msgType.
type Middleware func(msgType string, next HandlerFunc) HandlerFunc

// Dispatcher holds the type to handler table.
type Dispatcher struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerFunc
	middleware []Middleware

	registry *hub.Registry
	logger   types.Logger
}

// New creates a dispatcher with no handlers.
func New(registry *hub.Registry, logger types.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		registry: registry,
		logger:   logger,
	}
}

// Use appends middleware. It applies to handlers registered afterwards.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middleware = append(d.middleware, mw...)
}

// Handle registers fn for msgType, replacing any previous handler.
func (d *Dispatcher) Handle(msgType string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.middleware) - 1; i >= 0; i-- {
		fn = d.middleware[i](msgType, fn)
	}
	d.handlers[msgType] = fn
}

// Types returns the registered message types.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		out = append(out, t)
	}
	return out
}

// Dispatch decodes one text frame and runs the matching handler. Malformed
// frames, unknown types, handler errors and panics all become replies to
// the sender.
func (d *Dispatcher) Dispatch(ctx context.Context, conn *hub.Connection, frame []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		d.logger.Debug("Rejected malformed frame", "connectionID", conn.ID(), "error", err)
		d.registry.SendTo(conn, MsgInvalidJSON)
		return
	}

	d.mu.RLock()
	handler, ok := d.handlers[env.Type]
	d.mu.RUnlock()
	if !ok {
		msgType := env.Type
		if msgType == "" {
			msgType = "unknown"
		}
		d.registry.SendTo(conn, fmt.Sprintf(MsgUnknownType, msgType))
		return
	}

	req := &Request{Conn: conn, Identity: conn.Identity(), Envelope: env}
	if err := d.run(ctx, handler, req); err != nil {
		d.logger.Error("Message handler failed", "type", env.Type, "connectionID", conn.ID(), "error", err)
		d.registry.SendTo(conn, fmt.Sprintf(MsgHandlerErr, err))
	}
}

func (d *Dispatcher) run(ctx context.Context, handler HandlerFunc, req *Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, req)
}

// Reply sends text to the connection that sent req.
func (d *Dispatcher) Reply(req *Request, text string) {
	d.registry.SendTo(req.Conn, text)
}
