package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a user opens a new room.
type RoomCreatedEvent struct {
	RoomName  string    `json:"room_name"`
	CreatorID string    `json:"creator_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomClosedEvent is emitted when the creator closes a room.
type RoomClosedEvent struct {
	RoomName  string    `json:"room_name"`
	ClosedBy  string    `json:"closed_by"`
	Members   int       `json:"members"`
	Timestamp time.Time `json:"timestamp"`
}

// MemberJoinedEvent is emitted when a connection joins a room.
type MemberJoinedEvent struct {
	RoomName     string    `json:"room_name"`
	UserID       string    `json:"user_id"`
	ConnectionID string    `json:"connection_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemberLeftEvent is emitted when a connection leaves a room, either
// explicitly or because it disconnected.
type MemberLeftEvent struct {
	RoomName     string    `json:"room_name"`
	UserID       string    `json:"user_id"`
	ConnectionID string    `json:"connection_id"`
	Disconnected bool      `json:"disconnected"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)

	RoomClosedV1 = helper.EventDefinition[RoomClosedEvent](
		"chat",
		"RoomClosed",
		"v1",
	)

	MemberJoinedV1 = helper.EventDefinition[MemberJoinedEvent](
		"chat",
		"MemberJoined",
		"v1",
	)

	MemberLeftV1 = helper.EventDefinition[MemberLeftEvent](
		"chat",
		"MemberLeft",
		"v1",
	)
)
