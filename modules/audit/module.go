// Package audit keeps a durable trail of room lifecycle changes.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/chatroom-playground/events"
	"github.com/example/chatroom-playground/modules/storage"
)

// ServiceListAuditLogs is the request-reply service that returns records.
const ServiceListAuditLogs = "list-audit-logs"

// AuditModule records room events in SQLite.
type AuditModule struct {
	db     *gorm.DB
	repo   *Repository
	dbPath string
	logger types.Logger
	now    func() time.Time
}

var (
	_ mono.Module                = (*AuditModule)(nil)
	_ mono.EventConsumerModule   = (*AuditModule)(nil)
	_ mono.ServiceProviderModule = (*AuditModule)(nil)
	_ mono.HealthCheckableModule = (*AuditModule)(nil)
)

// NewModule creates a new AuditModule.
func NewModule(dbPath string, logger types.Logger) *AuditModule {
	return &AuditModule{
		dbPath: dbPath,
		logger: logger,
		now:    time.Now,
	}
}

// Name returns the module name.
func (m *AuditModule) Name() string {
	return "audit"
}

// Start opens the database and runs migrations.
func (m *AuditModule) Start(_ context.Context) error {
	db, err := storage.Open(m.dbPath, false, &AuditLog{})
	if err != nil {
		return err
	}
	m.db = db
	m.repo = NewRepository(db)

	m.logger.Info("Audit module started", "database", m.dbPath)
	return nil
}

// Stop closes the database.
func (m *AuditModule) Stop(_ context.Context) error {
	if err := storage.Close(m.db); err != nil {
		m.logger.Error("Failed to close audit database", "error", err)
	}
	m.logger.Info("Audit module stopped")
	return nil
}

// Health reports database reachability.
func (m *AuditModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// RegisterEventConsumers subscribes to room lifecycle events.
func (m *AuditModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.RoomCreatedV1, m.handleRoomCreated, m); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.RoomClosedV1, m.handleRoomClosed, m); err != nil {
		return fmt.Errorf("failed to register RoomClosed consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MemberJoinedV1, m.handleMemberJoined, m); err != nil {
		return fmt.Errorf("failed to register MemberJoined consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.MemberLeftV1, m.handleMemberLeft, m); err != nil {
		return fmt.Errorf("failed to register MemberLeft consumer: %w", err)
	}

	m.logger.Info("Registered audit event consumers", "events", []string{"RoomCreated", "RoomClosed", "MemberJoined", "MemberLeft"})
	return nil
}

// RegisterServices registers the audit query service.
func (m *AuditModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListAuditLogs, json.Unmarshal, json.Marshal, m.listAuditLogs,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListAuditLogs, err)
	}
	return nil
}

func (m *AuditModule) handleRoomCreated(ctx context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	return m.record(ctx, ActionCreate, event.RoomName, event.CreatorID, "", event.Timestamp)
}

func (m *AuditModule) handleRoomClosed(ctx context.Context, event events.RoomClosedEvent, _ *mono.Msg) error {
	details := fmt.Sprintf("closed with %d members", event.Members)
	if event.ClosedBy == "" {
		details = "closed automatically when empty"
	}
	return m.record(ctx, ActionDelete, event.RoomName, event.ClosedBy, details, event.Timestamp)
}

func (m *AuditModule) handleMemberJoined(ctx context.Context, event events.MemberJoinedEvent, _ *mono.Msg) error {
	return m.record(ctx, ActionJoin, event.RoomName, event.UserID, "connection "+event.ConnectionID, event.Timestamp)
}

func (m *AuditModule) handleMemberLeft(ctx context.Context, event events.MemberLeftEvent, _ *mono.Msg) error {
	details := "connection " + event.ConnectionID
	if event.Disconnected {
		details += " disconnected"
	}
	return m.record(ctx, ActionLeave, event.RoomName, event.UserID, details, event.Timestamp)
}

// record stores one entry. Storage failures are logged and not retried.
func (m *AuditModule) record(ctx context.Context, action, room, userID, details string, at time.Time) error {
	if at.IsZero() {
		at = m.now()
	}
	entry := &AuditLog{
		ID:        uuid.New().String(),
		Action:    action,
		RoomName:  room,
		UserID:    userID,
		Details:   details,
		CreatedAt: at,
	}
	if err := m.repo.Create(ctx, entry); err != nil {
		m.logger.Error("Failed to write audit log", "action", action, "room", room, "error", err)
		return nil
	}
	m.logger.Debug("Audit log written", "action", action, "room", room, "userID", userID)
	return nil
}

func (m *AuditModule) listAuditLogs(ctx context.Context, req ListAuditLogsRequest, _ *mono.Msg) (ListAuditLogsResponse, error) {
	logs, err := m.repo.List(ctx, Filter{RoomName: req.RoomName, Limit: req.Limit})
	if err != nil {
		return ListAuditLogsResponse{}, err
	}

	entries := make([]AuditLogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, AuditLogEntry{
			ID:        l.ID,
			Action:    l.Action,
			RoomName:  l.RoomName,
			UserID:    l.UserID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt,
		})
	}
	return ListAuditLogsResponse{Logs: entries, Total: len(entries)}, nil
}
