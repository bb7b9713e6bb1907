package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/vocalpath/pkg/protocol"
)

type frame struct {
	kind int
	data []byte
}

type fakeConn struct {
	mu      sync.Mutex
	written []frame
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame{kind, data})
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.written...)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	require.Eventually(t, h.IsRunning, time.Second, time.Millisecond)
	return h, cancel
}

func TestBroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)

	a, b := newFakeConn(), newFakeConn()
	go NewClient(h, a).Run()
	go NewClient(h, b).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	msg, err := protocol.NewStatusMessage("Guidance running.", "running", "")
	require.NoError(t, err)
	require.NoError(t, h.BroadcastProtocol(msg))
	h.BroadcastBinary([]byte{0xff, 0xd8})

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(c.frames()) == 2 }, time.Second, time.Millisecond)
		got := c.frames()
		assert.Equal(t, websocket.TextMessage, got[0].kind)
		parsed, err := protocol.ParseMessage(got[0].data)
		require.NoError(t, err)
		assert.Equal(t, protocol.TypeStatus, parsed.Type)
		assert.Equal(t, websocket.BinaryMessage, got[1].kind)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h, _ := startHub(t)

	c := newFakeConn()
	done := make(chan struct{})
	go func() {
		NewClient(h, c).Run()
		close(done)
	}()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	c.Close()
	<-done
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestStopClosesClients(t *testing.T) {
	h, cancel := startHub(t)

	c := newFakeConn()
	go NewClient(h, c).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-h.Done()

	require.Eventually(t, func() bool {
		f := c.frames()
		return len(f) == 1 && f[0].kind == websocket.CloseMessage
	}, time.Second, time.Millisecond)
	assert.False(t, h.IsRunning())
	assert.Equal(t, 0, h.ClientCount())

	// Joining a stopped hub closes the connection at once.
	late := newFakeConn()
	NewClient(h, late).Run()
	select {
	case <-late.closed:
	default:
		t.Fatal("late client not closed")
	}
}

func TestBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test", nil)
	assert.Error(t, h.BroadcastJSON(make(chan int)))
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	h := New("test", nil)
	for range cap(h.broadcast) + 3 {
		h.BroadcastBinary(nil)
	}
	assert.Equal(t, uint64(3), h.Dropped())
}
