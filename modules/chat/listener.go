package chat

import (
	"time"

	domain "github.com/example/chatroom-playground/domain/chat"
	"github.com/example/chatroom-playground/events"
	"github.com/example/chatroom-playground/modules/hub"
)

// The hub calls these after each committed directory change. Publishing is
// best effort: a failed publish is logged and the room change stands.

// RoomCreated publishes RoomCreated.
func (m *ChatModule) RoomCreated(info domain.RoomInfo) {
	m.publish("RoomCreated", func() error {
		return events.RoomCreatedV1.Publish(m.eventBus, events.RoomCreatedEvent{
			RoomName:  info.Name,
			CreatorID: info.Creator.String(),
			Timestamp: info.CreatedAt,
		}, nil)
	})
}

// RoomClosed publishes RoomClosed.
func (m *ChatModule) RoomClosed(name string, closedBy domain.Identity, members int) {
	m.publish("RoomClosed", func() error {
		return events.RoomClosedV1.Publish(m.eventBus, events.RoomClosedEvent{
			RoomName:  name,
			ClosedBy:  closedBy.String(),
			Members:   members,
			Timestamp: time.Now(),
		}, nil)
	})
}

// MemberJoined publishes MemberJoined.
func (m *ChatModule) MemberJoined(room string, conn *hub.Connection) {
	m.publish("MemberJoined", func() error {
		return events.MemberJoinedV1.Publish(m.eventBus, events.MemberJoinedEvent{
			RoomName:     room,
			UserID:       conn.Identity().String(),
			ConnectionID: conn.ID(),
			Timestamp:    time.Now(),
		}, nil)
	})
}

// MemberLeft publishes MemberLeft.
func (m *ChatModule) MemberLeft(room string, conn *hub.Connection, disconnected bool) {
	m.publish("MemberLeft", func() error {
		return events.MemberLeftV1.Publish(m.eventBus, events.MemberLeftEvent{
			RoomName:     room,
			UserID:       conn.Identity().String(),
			ConnectionID: conn.ID(),
			Disconnected: disconnected,
			Timestamp:    time.Now(),
		}, nil)
	})
}

func (m *ChatModule) publish(event string, fn func() error) {
	if m.eventBus == nil {
		return
	}
	if err := fn(); err != nil {
		m.logger.Warn("Failed to publish event", "event", event, "error", err)
	}
}
