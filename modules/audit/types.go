package audit

import "time"

// ListAuditLogsRequest represents a list-audit-logs request.
type ListAuditLogsRequest struct {
	RoomName string `json:"room_name,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// AuditLogEntry is the wire form of one record.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	RoomName  string    `json:"room_name"`
	UserID    string    `json:"user_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAuditLogsResponse represents a list-audit-logs response.
type ListAuditLogsResponse struct {
	Logs  []AuditLogEntry `json:"logs"`
	Total int             `json:"total"`
}
