// Package hub holds the in-process connection registry and room directory
// that back the chat WebSocket endpoint.
package hub

import (
	"context"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// Config holds hub settings.
type Config struct {
	OutboxSize int
	Directory  DirectoryConfig
}

// Hub ties the registry to the directory so that unregistering a
// connection always detaches it from its room.
type Hub struct {
	registry  *Registry
	directory *Directory
	config    Config
	logger    types.Logger
}

// New creates a hub. listener may be nil.
func New(config Config, listener Listener, logger types.Logger) *Hub {
	if config.OutboxSize <= 0 {
		config.OutboxSize = DefaultOutboxSize
	}
	directory := NewDirectory(config.Directory, listener, logger)
	return &Hub{
		registry:  NewRegistry(logger, directory),
		directory: directory,
		config:    config,
		logger:    logger,
	}
}

// Registry returns the connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Directory returns the room directory.
func (h *Hub) Directory() *Directory {
	return h.directory
}

// Connect wraps transport in a new connection and registers it for
// identity.
func (h *Hub) Connect(transport Transport, identity domain.Identity) (*Connection, error) {
	conn := NewConnection(transport, h.config.OutboxSize, h.logger)
	if err := h.registry.Register(conn, identity); err != nil {
		conn.close()
		return nil, err
	}
	return conn, nil
}

// Disconnect unregisters conn. It is safe to call more than once.
func (h *Hub) Disconnect(conn *Connection) {
	h.registry.Unregister(conn)
}

// Shutdown disconnects every client.
func (h *Hub) Shutdown(ctx context.Context) error {
	return h.registry.CloseAll(ctx)
}
