package audit

import (
	"time"
)

// Audit actions recorded for room lifecycle changes.
const (
	ActionCreate = "CREATE"
	ActionDelete = "DELETE"
	ActionJoin   = "JOIN"
	ActionLeave  = "LEAVE"
)

// AuditLog is one persisted room lifecycle record. Message contents are
// never stored.
type AuditLog struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Action    string    `gorm:"size:16;not null;index" json:"action"`
	RoomName  string    `gorm:"size:100;not null;index" json:"room_name"`
	UserID    string    `gorm:"size:64" json:"user_id,omitempty"`
	Details   string    `gorm:"size:255" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}
