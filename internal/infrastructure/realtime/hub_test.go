package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSocket records text frames written by the connection's write loop.
type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	if messageType != websocket.TextMessage {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeSocket) WriteControl(int, []byte, time.Time) error { return nil }

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeSocket) lastFrame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func (f *fakeSocket) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func attachConn(t *testing.T, h *Hub, userID string) (*Connection, *fakeSocket) {
	t.Helper()
	ws := &fakeSocket{}
	conn := NewConnection(userID, ws)
	h.Attach(conn)
	return conn, ws
}

func TestHub_BroadcastReachesRoomMembers(t *testing.T) {
	h := NewHub()
	defer h.Close()

	connX, wsX := attachConn(t, h, "user-x")
	connY, wsY := attachConn(t, h, "user-y")
	h.Join("conv-1", connX)
	h.Join("conv-1", connY)

	delivered := h.Broadcast("conv-1", []byte(`{"type":"message_received"}`), "")
	assert.Equal(t, 2, delivered)

	require.Eventually(t, func() bool {
		return wsX.frameCount() == 1 && wsY.frameCount() == 1
	}, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `{"type":"message_received"}`, string(wsY.lastFrame()))
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	h := NewHub()
	defer h.Close()

	connX, wsX := attachConn(t, h, "user-x")
	connY, wsY := attachConn(t, h, "user-y")
	h.Join("conv-1", connX)
	h.Join("conv-1", connY)

	delivered := h.Broadcast("conv-1", []byte("payload"), "user-x")
	assert.Equal(t, 1, delivered)

	require.Eventually(t, func() bool { return wsY.frameCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, wsX.frameCount())
}

func TestHub_BroadcastSkipsNonMembers(t *testing.T) {
	h := NewHub()
	defer h.Close()

	connX, _ := attachConn(t, h, "user-x")
	_, wsZ := attachConn(t, h, "user-z")
	h.Join("conv-1", connX)

	delivered := h.Broadcast("conv-1", []byte("payload"), "")
	assert.Equal(t, 1, delivered)
	assert.Zero(t, wsZ.frameCount())
}

func TestHub_NotifyUser(t *testing.T) {
	h := NewHub()
	defer h.Close()

	_, wsY := attachConn(t, h, "user-y")

	assert.True(t, h.NotifyUser("user-y", []byte("ding")))
	require.Eventually(t, func() bool { return wsY.frameCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.False(t, h.NotifyUser("user-offline", []byte("ding")))
}

func TestHub_AttachReplacesSession(t *testing.T) {
	h := NewHub()
	defer h.Close()

	first, wsFirst := attachConn(t, h, "user-x")
	h.Join("conv-1", first)

	second, wsSecond := attachConn(t, h, "user-x")
	h.Join("conv-1", second)

	require.Eventually(t, wsFirst.isClosed, time.Second, 5*time.Millisecond)
	assert.True(t, h.IsOnline("user-x"))

	// Only the fresh session remains subscribed to the room.
	delivered := h.Broadcast("conv-1", []byte("payload"), "")
	assert.Equal(t, 1, delivered)
	require.Eventually(t, func() bool { return wsSecond.frameCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_DetachClearsPresenceAndRooms(t *testing.T) {
	h := NewHub()
	defer h.Close()

	conn, _ := attachConn(t, h, "user-x")
	h.Join("conv-1", conn)

	h.Detach(conn)

	assert.False(t, h.IsOnline("user-x"))
	assert.Zero(t, h.Broadcast("conv-1", []byte("payload"), ""))
}
