package dispatch

import (
	"context"
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
	"github.com/example/chatroom-playground/modules/bot"
	"github.com/example/chatroom-playground/modules/hub"
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

type fakeTransport struct {
	mu     sync.Mutex
	frames []string
	closed bool
}

func (f *fakeTransport) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
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

func (f *fakeTransport) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.frames))
	copy(out, f.frames)
	return out
}

// client is one connected test user. read returns the frames received since
// the previous read.
type client struct {
	t    *testing.T
	conn *hub.Connection
	ft   *fakeTransport
	seen int
	env  *testEnv
}

func (c *client) send(frame string) {
	c.t.Helper()
	c.env.dispatcher.Dispatch(context.Background(), c.conn, []byte(frame))
}

func (c *client) read() []string {
	c.t.Helper()
	marker := fmt.Sprintf("%s%d", markerPrefix, markerSeq.Add(1))
	require.True(c.t, c.conn.Send(marker))
	require.Eventually(c.t, func() bool {
		for _, f := range c.ft.all() {
			if f == marker {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	all := c.ft.all()
	var out []string
	for _, f := range all[c.seen:] {
		if !strings.HasPrefix(f, markerPrefix) {
			out = append(out, f)
		}
	}
	c.seen = len(all)
	return out
}

type testEnv struct {
	t          *testing.T
	hub        *hub.Hub
	dispatcher *Dispatcher
	handlers   *RoomHandlers
}

func newTestEnv(t *testing.T, responder *bot.Responder) *testEnv {
	t.Helper()
	logger := &mockLogger{}
	h := hub.New(hub.Config{OutboxSize: 64}, nil, logger)
	d := New(h.Registry(), logger)
	rh := Register(d, h, responder)
	return &testEnv{t: t, hub: h, dispatcher: d, handlers: rh}
}

func (e *testEnv) connect(user string) *client {
	e.t.Helper()
	ft := &fakeTransport{}
	conn, err := e.hub.Connect(ft, domain.Identity(user))
	require.NoError(e.t, err)
	return &client{t: e.t, conn: conn, ft: ft, env: e}
}
