// Package user holds the identity records the chat endpoint authenticates
// against.
package user

import (
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID        string `gorm:"primaryKey;type:text"`
	Email     string `gorm:"uniqueIndex;not null;type:text"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims is what a validated token says about its bearer.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
