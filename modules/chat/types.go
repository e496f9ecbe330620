package chat

import (
	domain "github.com/example/chatroom-playground/domain/chat"
)

// ListRoomsRequest represents a list-rooms request.
type ListRoomsRequest struct{}

// ListRoomsResponse represents a list-rooms response.
type ListRoomsResponse struct {
	Rooms []domain.RoomInfo `json:"rooms"`
	Total int               `json:"total"`
}
