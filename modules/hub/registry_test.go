package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDetacher struct {
	calls atomic.Int32
}

func (c *countingDetacher) Detach(*Connection) {
	c.calls.Add(1)
}

func TestRegistry_RegisterAllowsSameIdentityTwice(t *testing.T) {
	r := NewRegistry(&mockLogger{})
	a := NewConnection(&fakeTransport{}, 4, &mockLogger{})
	b := NewConnection(&fakeTransport{}, 4, &mockLogger{})

	require.NoError(t, r.Register(a, "alice"))
	require.NoError(t, r.Register(b, "alice"))

	assert.Equal(t, 2, r.Count())
	id, ok := r.IdentityOf(b)
	assert.True(t, ok)
	assert.Equal(t, "alice", id.String())
	assert.Equal(t, "alice", a.Identity().String())
}

func TestRegistry_RegisterRejectsEmptyIdentity(t *testing.T) {
	r := NewRegistry(&mockLogger{})
	conn := NewConnection(&fakeTransport{}, 4, &mockLogger{})
	defer conn.close()

	assert.ErrorIs(t, r.Register(conn, ""), ErrEmptyIdentity)
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	detacher := &countingDetacher{}
	r := NewRegistry(&mockLogger{}, detacher)
	ft := &fakeTransport{}
	conn := NewConnection(ft, 4, &mockLogger{})
	require.NoError(t, r.Register(conn, "alice"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Unregister(conn)
		}()
	}
	wg.Wait()
	r.Unregister(conn)

	assert.Equal(t, int32(1), detacher.calls.Load())
	assert.False(t, r.IsRegistered(conn))
	require.Eventually(t, ft.isClosed, 2*time.Second, 5*time.Millisecond)
}

func TestRegistry_BroadcastSkipsExcluded(t *testing.T) {
	r := NewRegistry(&mockLogger{})
	ta, tb, tc := &fakeTransport{}, &fakeTransport{}, &fakeTransport{}
	a := NewConnection(ta, 8, &mockLogger{})
	b := NewConnection(tb, 8, &mockLogger{})
	c := NewConnection(tc, 8, &mockLogger{})
	for _, conn := range []*Connection{a, b, c} {
		require.NoError(t, r.Register(conn, "user"))
	}

	delivered := r.Broadcast("hello", a)

	assert.Equal(t, 2, delivered)
	assert.Empty(t, flush(t, a, ta))
	assert.Equal(t, []string{"hello"}, flush(t, b, tb))
	assert.Equal(t, []string{"hello"}, flush(t, c, tc))
}

func TestRegistry_BroadcastIsolatesDeadConnection(t *testing.T) {
	r := NewRegistry(&mockLogger{})
	dead := &fakeTransport{failing: true}
	alive := &fakeTransport{}
	d := NewConnection(dead, 8, &mockLogger{})
	a := NewConnection(alive, 8, &mockLogger{})
	require.NoError(t, r.Register(d, "dead"))
	require.NoError(t, r.Register(a, "alive"))

	d.Send("trigger failure")
	require.Eventually(t, dead.isClosed, 2*time.Second, 5*time.Millisecond)

	r.Broadcast("still here", nil)

	assert.Equal(t, []string{"still here"}, flush(t, a, alive))
}

func TestRegistry_SendToUnregisteredDoesNotPanic(t *testing.T) {
	r := NewRegistry(&mockLogger{})
	conn := NewConnection(&fakeTransport{}, 4, &mockLogger{})
	require.NoError(t, r.Register(conn, "alice"))
	r.Unregister(conn)

	assert.NotPanics(t, func() { r.SendTo(conn, "hello?") })
}

func TestRegistry_CloseAll(t *testing.T) {
	detacher := &countingDetacher{}
	r := NewRegistry(&mockLogger{}, detacher)
	transports := make([]*fakeTransport, 20)
	for i := range transports {
		transports[i] = &fakeTransport{}
		require.NoError(t, r.Register(NewConnection(transports[i], 4, &mockLogger{}), "user"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.CloseAll(ctx))

	assert.Equal(t, 0, r.Count())
	assert.Equal(t, int32(20), detacher.calls.Load())
	for _, ft := range transports {
		assert.True(t, ft.isClosed())
	}
}
