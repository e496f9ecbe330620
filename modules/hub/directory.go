package hub

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// DirectoryConfig controls room lifecycle policy.
type DirectoryConfig struct {
	// AutoCloseEmpty deletes a room as soon as its last member leaves or
	// disconnects. When false, rooms live until their creator closes them.
	AutoCloseEmpty bool
}

// Listener observes committed directory changes. Callbacks run after the
// directory lock is released.
type Listener interface {
	RoomCreated(info domain.RoomInfo)
	RoomClosed(name string, closedBy domain.Identity, members int)
	MemberJoined(room string, conn *Connection)
	MemberLeft(room string, conn *Connection, disconnected bool)
}

// NopListener ignores every directory change.
type NopListener struct{}

func (NopListener) RoomCreated(domain.RoomInfo)             {}
func (NopListener) RoomClosed(string, domain.Identity, int) {}
func (NopListener) MemberJoined(string, *Connection)        {}
func (NopListener) MemberLeft(string, *Connection, bool)    {}

// Directory maps room names to rooms and tracks the current room of every
// connection. A single mutex covers both maps, so a connection's current
// room and the room's member set always change together.
type Directory struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	current map[*Connection]*Room

	config   DirectoryConfig
	listener Listener
	logger   types.Logger
	now      func() time.Time
}

// NewDirectory creates an empty directory. A nil listener is replaced by
// NopListener.
func NewDirectory(config DirectoryConfig, listener Listener, logger types.Logger) *Directory {
	if listener == nil {
		listener = NopListener{}
	}
	return &Directory{
		rooms:    make(map[string]*Room),
		current:  make(map[*Connection]*Room),
		config:   config,
		listener: listener,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateRoom opens a new room owned by identity. The creator is not joined
// to it.
func (d *Directory) CreateRoom(name string, creator *Connection, identity domain.Identity) (domain.RoomInfo, error) {
	d.mu.Lock()
	if creator.detached {
		d.mu.Unlock()
		return domain.RoomInfo{}, ErrConnectionClosed
	}
	if _, exists := d.rooms[name]; exists {
		d.mu.Unlock()
		return domain.RoomInfo{}, fmt.Errorf("%w: %s", domain.ErrRoomAlreadyExists, name)
	}
	room := newRoom(name, identity, d.now())
	d.rooms[name] = room
	info := room.info()
	d.mu.Unlock()

	d.logger.Info("Room created", "room", name, "creatorID", identity, "connectionID", creator.ID())
	d.listener.RoomCreated(info)
	return info, nil
}

// JoinRoom moves conn into the named room, leaving its previous room
// first. The joiner receives a ROOM_UPDATE line and the other members are
// told about the arrival. A connection that was already unregistered is
// rejected with ErrConnectionClosed, even if its handler is still running.
func (d *Directory) JoinRoom(name string, conn *Connection) error {
	var notify []func()

	d.mu.Lock()
	if conn.detached {
		d.mu.Unlock()
		return ErrConnectionClosed
	}
	target, ok := d.rooms[name]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, name)
	}

	if previous := d.current[conn]; previous != nil && previous != target {
		notify = append(notify, d.leaveLocked(conn, previous, false)...)
	}

	moved := !target.has(conn)
	target.add(conn)
	d.current[conn] = target
	conn.Send(domain.RoomUpdate(name))
	if moved {
		target.broadcast(fmt.Sprintf("[System] User %s joined the room", conn.Identity()), conn)
		notify = append(notify, func() { d.listener.MemberJoined(name, conn) })
	}
	d.mu.Unlock()

	if moved {
		d.logger.Info("Connection joined room", "room", name, "connectionID", conn.ID())
	}
	runAll(notify)
	return nil
}

// LeaveRoom removes conn from its current room and returns the room name.
// The room itself stays open unless AutoCloseEmpty is set and it became
// empty.
func (d *Directory) LeaveRoom(conn *Connection) (string, error) {
	d.mu.Lock()
	room := d.current[conn]
	if room == nil {
		d.mu.Unlock()
		return "", domain.ErrNoCurrentRoom
	}
	notify := d.leaveLocked(conn, room, false)
	conn.Send(domain.RoomUpdate(""))
	d.mu.Unlock()

	d.logger.Info("Connection left room", "room", room.name, "connectionID", conn.ID())
	runAll(notify)
	return room.name, nil
}

// CloseRoom deletes the caller's current room. Only the creator identity
// may close it. Every member gets its current room cleared and receives a
// ROOM_UPDATE:None line.
func (d *Directory) CloseRoom(conn *Connection, identity domain.Identity) (string, error) {
	d.mu.Lock()
	room := d.current[conn]
	if room == nil {
		d.mu.Unlock()
		return "", domain.ErrNoCurrentRoom
	}
	if room.creator != identity {
		d.mu.Unlock()
		return "", fmt.Errorf("%w: %s", domain.ErrNotRoomCreator, room.name)
	}

	members := room.size()
	closedNotice := fmt.Sprintf("[System] Room '%s' was closed by its creator", room.name)
	for member := range room.members {
		delete(d.current, member)
		if member != conn {
			member.Send(closedNotice)
		}
		member.Send(domain.RoomUpdate(""))
	}
	delete(d.rooms, room.name)
	d.mu.Unlock()

	d.logger.Info("Room closed", "room", room.name, "closedBy", identity, "members", members)
	d.listener.RoomClosed(room.name, identity, members)
	return room.name, nil
}

// ListRooms returns the rooms sorted by name. Each iteration takes a fresh
// snapshot, so the sequence can be ranged over more than once.
func (d *Directory) ListRooms() iter.Seq[domain.RoomInfo] {
	return func(yield func(domain.RoomInfo) bool) {
		for _, info := range d.snapshot() {
			if !yield(info) {
				return
			}
		}
	}
}

// RoomCount returns the number of open rooms.
func (d *Directory) RoomCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// CurrentRoom returns the name of the room conn is in.
func (d *Directory) CurrentRoom(conn *Connection) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room := d.current[conn]
	if room == nil {
		return "", false
	}
	return room.name, true
}

// BroadcastFrom sends text to the members of conn's current room and
// returns the room name. The sender is skipped unless includeSender is set.
func (d *Directory) BroadcastFrom(conn *Connection, text string, includeSender bool) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room := d.current[conn]
	if room == nil {
		return "", domain.ErrNoCurrentRoom
	}
	exclude := conn
	if includeSender {
		exclude = nil
	}
	room.broadcast(text, exclude)
	return room.name, nil
}

// Detach drops conn from its room without sending it anything and keeps it
// from joining or creating rooms afterwards. It is the disconnect path and
// implements Detacher.
func (d *Directory) Detach(conn *Connection) {
	d.mu.Lock()
	conn.detached = true
	room := d.current[conn]
	if room == nil {
		d.mu.Unlock()
		return
	}
	notify := d.leaveLocked(conn, room, true)
	d.mu.Unlock()

	d.logger.Info("Detached disconnected connection from room", "room", room.name, "connectionID", conn.ID())
	runAll(notify)
}

// leaveLocked removes conn from room and returns the listener callbacks to
// run once the lock is released. d.mu must be held.
func (d *Directory) leaveLocked(conn *Connection, room *Room, disconnected bool) []func() {
	room.remove(conn)
	delete(d.current, conn)
	room.broadcast(fmt.Sprintf("[System] User %s left the room", conn.Identity()), nil)

	notify := []func(){
		func() { d.listener.MemberLeft(room.name, conn, disconnected) },
	}

	if d.config.AutoCloseEmpty && room.size() == 0 && d.rooms[room.name] == room {
		delete(d.rooms, room.name)
		notify = append(notify, func() { d.listener.RoomClosed(room.name, "", 0) })
		d.logger.Info("Closed empty room", "room", room.name)
	}
	return notify
}

func (d *Directory) snapshot() []domain.RoomInfo {
	d.mu.Lock()
	rooms := make([]domain.RoomInfo, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room.info())
	}
	d.mu.Unlock()

	slices.SortFunc(rooms, func(a, b domain.RoomInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return rooms
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
