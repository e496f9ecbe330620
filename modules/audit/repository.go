package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Filter narrows a listing.
type Filter struct {
	RoomName string
	Limit    int
}

// Repository provides access to audit log storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new record.
func (r *Repository) Create(ctx context.Context, entry *AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// List returns the newest records first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Limit(limit)
	if filter.RoomName != "" {
		query = query.Where("room_name = ?", filter.RoomName)
	}

	var logs []*AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
