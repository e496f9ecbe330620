package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_ConnectRejectsEmptyIdentity(t *testing.T) {
	h := newTestHub(false)
	ft := &fakeTransport{}

	conn, err := h.Connect(ft, "")

	assert.ErrorIs(t, err, ErrEmptyIdentity)
	assert.Nil(t, conn)
	assert.Eventually(t, ft.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.Registry().Count())
}

func TestHub_DisconnectLeavesRoomOpen(t *testing.T) {
	h := newTestHub(false)
	a, _ := connect(t, h, "alice")
	b, tb := connect(t, h, "bob")
	d := h.Directory()
	_, err := d.CreateRoom("x", a, "alice")
	require.NoError(t, err)
	require.NoError(t, d.JoinRoom("x", a))
	require.NoError(t, d.JoinRoom("x", b))

	h.Disconnect(a)

	assert.False(t, h.Registry().IsRegistered(a))
	_, inRoom := d.CurrentRoom(a)
	assert.False(t, inRoom)
	assert.Equal(t, []string{"x"}, roomNames(d))
	for info := range d.ListRooms() {
		assert.Equal(t, 1, info.MemberCount)
	}
	assert.Contains(t, flush(t, b, tb), "[System] User alice left the room")
	assertConsistent(t, d)
}

func TestHub_DisconnectClosesEmptyRoomWhenConfigured(t *testing.T) {
	h := newTestHub(true)
	a, _ := connect(t, h, "alice")
	d := h.Directory()
	_, err := d.CreateRoom("x", a, "alice")
	require.NoError(t, err)
	require.NoError(t, d.JoinRoom("x", a))

	h.Disconnect(a)

	assert.Equal(t, 0, d.RoomCount())
}

func TestHub_DisconnectEmitsDroppedMember(t *testing.T) {
	listener := &recordingListener{}
	h := New(Config{}, listener, &mockLogger{})
	a, _ := connect(t, h, "alice")
	_, _ = h.Directory().CreateRoom("x", a, "alice")
	require.NoError(t, h.Directory().JoinRoom("x", a))

	h.Disconnect(a)
	h.Disconnect(a)

	assert.Equal(t, []string{"created:x", "joined:x:alice", "dropped:x:alice"}, listener.all())
}

func TestHub_Shutdown(t *testing.T) {
	h := newTestHub(false)
	_, ta := connect(t, h, "alice")
	_, tb := connect(t, h, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Shutdown(ctx))

	assert.Equal(t, 0, h.Registry().Count())
	assert.True(t, ta.isClosed())
	assert.True(t, tb.isClosed())
}
