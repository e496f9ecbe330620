// Package chat is the mono module that owns live chat connections and rooms.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/chatroom-playground/domain/chat"
	"github.com/example/chatroom-playground/events"
	"github.com/example/chatroom-playground/modules/bot"
	"github.com/example/chatroom-playground/modules/dispatch"
	"github.com/example/chatroom-playground/modules/hub"
	"github.com/example/chatroom-playground/modules/ratelimit"
)

// ServiceListRooms is the request-reply service that lists open rooms.
const ServiceListRooms = "list-rooms"

// MsgShuttingDown is broadcast to every client before the server closes.
const MsgShuttingDown = "[System] Server is shutting down"

// Config holds chat module settings.
type Config struct {
	Hub hub.Config
	// DisableBot turns off automatic bot replies.
	DisableBot bool
}

// ChatModule wires the hub, the dispatcher and the event bus together.
type ChatModule struct {
	config     Config
	hub        *hub.Hub
	dispatcher *dispatch.Dispatcher
	handlers   *dispatch.RoomHandlers
	limiter    ratelimit.Limiter
	eventBus   mono.EventBus
	logger     types.Logger
	startTime  time.Time
}

// Compile-time interface checks
var (
	_ mono.Module                = (*ChatModule)(nil)
	_ mono.EventBusAwareModule   = (*ChatModule)(nil)
	_ mono.EventEmitterModule    = (*ChatModule)(nil)
	_ mono.ServiceProviderModule = (*ChatModule)(nil)
	_ mono.HealthCheckableModule = (*ChatModule)(nil)
	_ hub.Listener               = (*ChatModule)(nil)
)

// NewModule creates a new chat module. limiter may be nil to disable
// message rate limiting.
func NewModule(config Config, limiter ratelimit.Limiter, logger types.Logger) *ChatModule {
	m := &ChatModule{
		config:  config,
		limiter: limiter,
		logger:  logger,
	}
	m.hub = hub.New(config.Hub, m, logger)
	m.dispatcher = dispatch.New(m.hub.Registry(), logger)
	if limiter != nil {
		m.dispatcher.Use(dispatch.RateLimit(limiter, m.hub.Registry(), logger, dispatch.TypeMessage))
	}

	var responder *bot.Responder
	if !config.DisableBot {
		responder = bot.New()
	}
	m.handlers = dispatch.Register(m.dispatcher, m.hub, responder)
	return m
}

// Name returns the module name.
func (m *ChatModule) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *ChatModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *ChatModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomClosedV1.ToBase(),
		events.MemberJoinedV1.ToBase(),
		events.MemberLeftV1.ToBase(),
	}
}

// RegisterServices registers the chat query services.
func (m *ChatModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}
	m.logger.Info("Registered chat services", "services", []string{ServiceListRooms})
	return nil
}

// Start marks the module as running.
func (m *ChatModule) Start(_ context.Context) error {
	m.startTime = time.Now()
	m.logger.Info("Chat module started", "autoCloseEmptyRooms", m.config.Hub.Directory.AutoCloseEmpty)
	return nil
}

// Stop tells every client the server is going away and closes them.
func (m *ChatModule) Stop(ctx context.Context) error {
	clients := m.hub.Registry().Broadcast(MsgShuttingDown, nil)
	if err := m.hub.Shutdown(ctx); err != nil {
		m.logger.Warn("Not every connection drained before shutdown", "error", err)
	}
	m.logger.Info("Chat module stopped", "clients", clients)
	return nil
}

// Health reports connection and room counts.
func (m *ChatModule) Health(_ context.Context) mono.HealthStatus {
	if m.startTime.IsZero() {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.Registry().Count(),
			"rooms":             m.hub.Directory().RoomCount(),
			"uptime":            time.Since(m.startTime).Round(time.Second).String(),
		},
	}
}

// Connect registers a new authenticated client and greets it.
func (m *ChatModule) Connect(transport hub.Transport, identity domain.Identity) (*hub.Connection, error) {
	conn, err := m.hub.Connect(transport, identity)
	if err != nil {
		return nil, err
	}
	m.handlers.Welcome(conn)
	return conn, nil
}

// Handle processes one inbound text frame from conn.
func (m *ChatModule) Handle(ctx context.Context, conn *hub.Connection, frame []byte) {
	m.dispatcher.Dispatch(ctx, conn, frame)
}

// Disconnect removes conn and everything tied to it. It is safe to call
// more than once.
func (m *ChatModule) Disconnect(conn *hub.Connection) {
	m.hub.Disconnect(conn)
	if m.limiter != nil {
		m.limiter.Forget(context.Background(), conn.ID())
	}
}

// Dispatcher exposes the message table so callers can add message types.
func (m *ChatModule) Dispatcher() *dispatch.Dispatcher {
	return m.dispatcher
}

// Hub returns the underlying hub.
func (m *ChatModule) Hub() *hub.Hub {
	return m.hub
}

func (m *ChatModule) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	rooms := make([]domain.RoomInfo, 0, m.hub.Directory().RoomCount())
	for info := range m.hub.Directory().ListRooms() {
		rooms = append(rooms, info)
	}
	return ListRoomsResponse{Rooms: rooms, Total: len(rooms)}, nil
}
