package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuditPort is how other modules read the audit trail.
type AuditPort interface {
	ListAuditLogs(ctx context.Context, roomName string, limit int) ([]AuditLogEntry, error)
}

// AuditAdapter implements AuditPort using the service container.
type AuditAdapter struct {
	container mono.ServiceContainer
}

// NewAuditAdapter creates a new AuditAdapter.
func NewAuditAdapter(container mono.ServiceContainer) *AuditAdapter {
	return &AuditAdapter{container: container}
}

// ListAuditLogs returns the newest records, optionally for one room.
func (a *AuditAdapter) ListAuditLogs(ctx context.Context, roomName string, limit int) ([]AuditLogEntry, error) {
	req := ListAuditLogsRequest{RoomName: roomName, Limit: limit}
	var resp ListAuditLogsResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListAuditLogs,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", ServiceListAuditLogs, err)
	}
	return resp.Logs, nil
}
