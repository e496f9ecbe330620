package hub

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"

	domain "github.com/example/chatroom-playground/domain/chat"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

const markerPrefix = "__marker__"

var markerSeq atomic.Int64

// fakeTransport records every frame written to it.
type fakeTransport struct {
	mu      sync.Mutex
	frames  []string
	closed  bool
	failing bool
}

func (f *fakeTransport) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.failing {
		return errors.New("write on closed transport")
	}
	f.frames = append(f.frames, text)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	copy(out, f.frames)
	return out
}

// flush waits until every frame queued on conn so far has been written and
// returns the frames received, markers excluded.
func flush(t *testing.T, conn *Connection, ft *fakeTransport) []string {
	t.Helper()
	marker := fmt.Sprintf("%s%d", markerPrefix, markerSeq.Add(1))
	require.True(t, conn.Send(marker), "connection rejected flush marker")
	require.Eventually(t, func() bool {
		for _, f := range ft.all() {
			if f == marker {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	var out []string
	for _, f := range ft.all() {
		if !strings.HasPrefix(f, markerPrefix) {
			out = append(out, f)
		}
	}
	return out
}

func newTestHub(autoClose bool) *Hub {
	return New(Config{OutboxSize: 32, Directory: DirectoryConfig{AutoCloseEmpty: autoClose}}, nil, &mockLogger{})
}

func connect(t *testing.T, h *Hub, user string) (*Connection, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	conn, err := h.Connect(ft, domain.Identity(user))
	require.NoError(t, err)
	return conn, ft
}

// assertConsistent checks that every current-room pointer matches a member
// set entry and the other way round.
func assertConsistent(t *testing.T, d *Directory) {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()

	for conn, room := range d.current {
		require.Same(t, room, d.rooms[room.name], "pointer to room missing from directory")
		require.True(t, room.has(conn), "connection %s points at %s but is not a member", conn.ID(), room.name)
	}
	for _, room := range d.rooms {
		for member := range room.members {
			require.Same(t, room, d.current[member], "member %s of %s has wrong pointer", member.ID(), room.name)
		}
	}
}
