// Package chat provides domain types shared by the chat room modules.
package chat

import "time"

// Identity is the opaque id of an authenticated user.
type Identity string

// String returns the identity as plain text.
func (i Identity) String() string {
	return string(i)
}

// RoomInfo is a point-in-time view of one room in the directory.
type RoomInfo struct {
	Name        string    `json:"name"`
	Creator     Identity  `json:"creator_id"`
	MemberCount int       `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// Envelope is an inbound client frame.
type Envelope struct {
	Type     string `json:"type"`
	RoomName string `json:"room_name,omitempty"`
	Content  string `json:"content,omitempty"`
}

// RoomUpdatePrefix starts the control line clients use to track their current room.
const RoomUpdatePrefix = "ROOM_UPDATE:"

// NoRoom is sent after RoomUpdatePrefix when a connection is no longer in a room.
const NoRoom = "None"

// RoomUpdate formats the control line for the given room name.
// An empty name means the connection left its room.
func RoomUpdate(room string) string {
	if room == "" {
		return RoomUpdatePrefix + NoRoom
	}
	return RoomUpdatePrefix + room
}
