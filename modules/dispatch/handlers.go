package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/chatroom-playground/domain/chat"
	"github.com/example/chatroom-playground/modules/bot"
	"github.com/example/chatroom-playground/modules/hub"
)

// Message types understood by the chat endpoint.
const (
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeLeaveRoom  = "leave_room"
	TypeCloseRoom  = "close_room"
	TypeListRooms  = "list_rooms"
	TypeMessage    = "message"
)

// CreatedLayout formats room creation times in room listings.
const CreatedLayout = "2006-01-02 15:04:05"

// RoomHandlers implements the built-in message types on top of a hub.
type RoomHandlers struct {
	d   *Dispatcher
	hub *hub.Hub
	bot *bot.Responder
}

// Register installs the built-in handlers on d. responder may be nil to
// disable bot replies.
func Register(d *Dispatcher, h *hub.Hub, responder *bot.Responder) *RoomHandlers {
	rh := &RoomHandlers{d: d, hub: h, bot: responder}
	d.Handle(TypeCreateRoom, rh.CreateRoom)
	d.Handle(TypeJoinRoom, rh.JoinRoom)
	d.Handle(TypeLeaveRoom, rh.LeaveRoom)
	d.Handle(TypeCloseRoom, rh.CloseRoom)
	d.Handle(TypeListRooms, rh.ListRooms)
	d.Handle(TypeMessage, rh.Message)
	return rh
}

// Welcome greets a freshly registered connection.
func (rh *RoomHandlers) Welcome(conn *hub.Connection) {
	rh.hub.Registry().SendTo(conn, fmt.Sprintf("[System] Welcome! You are connected as user %s", conn.Identity()))
	rh.hub.Registry().SendTo(conn, "[System] Available commands: "+strings.Join([]string{
		TypeCreateRoom, TypeJoinRoom, TypeLeaveRoom, TypeCloseRoom, TypeListRooms, TypeMessage,
	}, ", "))
}

// CreateRoom handles create_room.
func (rh *RoomHandlers) CreateRoom(_ context.Context, req *Request) error {
	name := req.Envelope.RoomName
	if reply, ok := roomNameProblem(name); !ok {
		rh.d.Reply(req, reply)
		return nil
	}

	_, err := rh.hub.Directory().CreateRoom(name, req.Conn, req.Identity)
	switch {
	case errors.Is(err, domain.ErrRoomAlreadyExists):
		rh.d.Reply(req, fmt.Sprintf("[System] Room '%s' already exists!", name))
	case errors.Is(err, hub.ErrConnectionClosed):
		// The peer is gone; nobody is left to answer.
	case err != nil:
		return err
	default:
		rh.d.Reply(req, fmt.Sprintf("[System] Room '%s' created successfully!", name))
	}
	return nil
}

// JoinRoom handles join_room.
func (rh *RoomHandlers) JoinRoom(_ context.Context, req *Request) error {
	name := req.Envelope.RoomName
	if reply, ok := roomNameProblem(name); !ok {
		rh.d.Reply(req, reply)
		return nil
	}

	err := rh.hub.Directory().JoinRoom(name, req.Conn)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		rh.d.Reply(req, fmt.Sprintf("[System] Room '%s' does not exist!", name))
	case errors.Is(err, hub.ErrConnectionClosed):
	case err != nil:
		return err
	default:
		rh.d.Reply(req, fmt.Sprintf("[System] Joined room '%s' successfully!", name))
	}
	return nil
}

// LeaveRoom handles leave_room.
func (rh *RoomHandlers) LeaveRoom(_ context.Context, req *Request) error {
	name, err := rh.hub.Directory().LeaveRoom(req.Conn)
	switch {
	case errors.Is(err, domain.ErrNoCurrentRoom):
		rh.d.Reply(req, "[System] You are not in any room!")
	case err != nil:
		return err
	default:
		rh.d.Reply(req, fmt.Sprintf("[System] Left room '%s' successfully!", name))
	}
	return nil
}

// CloseRoom handles close_room.
func (rh *RoomHandlers) CloseRoom(_ context.Context, req *Request) error {
	name, err := rh.hub.Directory().CloseRoom(req.Conn, req.Identity)
	switch {
	case errors.Is(err, domain.ErrNoCurrentRoom):
		rh.d.Reply(req, "[System] You are not in any room!")
	case errors.Is(err, domain.ErrNotRoomCreator):
		rh.d.Reply(req, "[System] Only the room creator can close the room!")
	case err != nil:
		return err
	default:
		rh.d.Reply(req, fmt.Sprintf("[System] Room '%s' closed successfully!", name))
	}
	return nil
}

// ListRooms handles list_rooms.
func (rh *RoomHandlers) ListRooms(_ context.Context, req *Request) error {
	var b strings.Builder
	for info := range rh.hub.Directory().ListRooms() {
		if b.Len() == 0 {
			b.WriteString("[System] Active Rooms:")
		}
		fmt.Fprintf(&b, "\n  - %s (Creator: %s, Members: %d, Created: %s)",
			info.Name, info.Creator, info.MemberCount, info.CreatedAt.Format(CreatedLayout))
	}
	if b.Len() == 0 {
		rh.d.Reply(req, "[System] No active rooms available.")
		return nil
	}
	rh.d.Reply(req, b.String())
	return nil
}

// Message handles message: the sender gets an echo first, then the rest of
// the room gets the text and the bot may answer everyone.
func (rh *RoomHandlers) Message(_ context.Context, req *Request) error {
	content := req.Envelope.Content
	switch err := domain.ValidateMessage(content); {
	case errors.Is(err, domain.ErrMessageEmpty):
		rh.d.Reply(req, "[System] Message content cannot be empty!")
		return nil
	case errors.Is(err, domain.ErrMessageTooLong):
		rh.d.Reply(req, fmt.Sprintf("[System] Message is too long (max %d characters)!", domain.MaxMessageLength))
		return nil
	case err != nil:
		rh.d.Reply(req, "[System] Message contains invalid characters!")
		return nil
	}

	directory := rh.hub.Directory()
	if _, ok := directory.CurrentRoom(req.Conn); !ok {
		rh.d.Reply(req, "[System] You need to join a room first to send messages!")
		return nil
	}
	rh.d.Reply(req, "You wrote: "+content)

	_, err := directory.BroadcastFrom(req.Conn, fmt.Sprintf("User %s says: %s", req.Identity, content), false)
	if errors.Is(err, domain.ErrNoCurrentRoom) {
		// Closed or left in between; the echo already went out.
		return nil
	}
	if err != nil {
		return err
	}

	if rh.bot == nil {
		return nil
	}
	if reply, ok := rh.bot.Reply(content); ok {
		// The room may have closed in between; then there is nobody to answer.
		_, _ = directory.BroadcastFrom(req.Conn, bot.Prefix+reply, true)
	}
	return nil
}

func roomNameProblem(name string) (string, bool) {
	switch err := domain.ValidateRoomName(name); {
	case err == nil:
		return "", true
	case errors.Is(err, domain.ErrRoomNameEmpty):
		return "[System] Room name is required!", false
	case errors.Is(err, domain.ErrRoomNameTooLong):
		return fmt.Sprintf("[System] Room name is too long (max %d characters)!", domain.MaxRoomNameLength), false
	default:
		return "[System] Room name contains invalid characters!", false
	}
}
