package hub

import (
	"time"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// Room is one named chat channel. It is only mutated by the Directory,
// under the directory lock.
type Room struct {
	name      string
	creator   domain.Identity
	members   map[*Connection]struct{}
	createdAt time.Time
}

func newRoom(name string, creator domain.Identity, createdAt time.Time) *Room {
	return &Room{
		name:      name,
		creator:   creator,
		members:   make(map[*Connection]struct{}),
		createdAt: createdAt,
	}
}

func (r *Room) add(conn *Connection) {
	r.members[conn] = struct{}{}
}

func (r *Room) remove(conn *Connection) {
	delete(r.members, conn)
}

func (r *Room) has(conn *Connection) bool {
	_, ok := r.members[conn]
	return ok
}

func (r *Room) size() int {
	return len(r.members)
}

// broadcast sends text to every member except exclude. A failed send to
// one member does not affect the others.
func (r *Room) broadcast(text string, exclude *Connection) {
	for conn := range r.members {
		if conn == exclude {
			continue
		}
		conn.Send(text)
	}
}

func (r *Room) info() domain.RoomInfo {
	return domain.RoomInfo{
		Name:        r.name,
		Creator:     r.creator,
		MemberCount: len(r.members),
		CreatedAt:   r.createdAt,
	}
}
