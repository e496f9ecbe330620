package api

import "time"

// RoomResponse is the API response for a room.
type RoomResponse struct {
	Name      string    `json:"name"`
	CreatorID string    `json:"creator_id"`
	Members   int       `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

// AuditLogResponse is the API response for one audit record.
type AuditLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	RoomName  string    `json:"room_name"`
	UserID    string    `json:"user_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogListResponse is the API response for listing audit records.
type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
