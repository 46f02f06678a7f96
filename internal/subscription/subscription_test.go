package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// start runs s in the background and returns a stop func that waits for Run
// to return.
func start(t *testing.T, s *Subscription) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("subscription did not stop")
		}
	}
}

func TestRun_InitialFetch(t *testing.T) {
	var n atomic.Int32
	s := New(func(context.Context) error { n.Add(1); return nil }, discard())
	stop := start(t, s)
	defer stop()

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestFocusTrigger(t *testing.T) {
	var n atomic.Int32
	focus := NewFocus()
	s := New(func(context.Context) error { n.Add(1); return nil }, discard(), focus)
	stop := start(t, s)
	defer stop()

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	focus.Notify()
	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestIntervalTrigger(t *testing.T) {
	var n atomic.Int32
	s := New(func(context.Context) error { n.Add(1); return nil }, discard(), Interval(10*time.Millisecond))
	stop := start(t, s)
	defer stop()

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestKicksCoalesce(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	var running, maxRunning atomic.Int32
	s := New(func(context.Context) error {
		cur := running.Add(1)
		if cur > maxRunning.Load() {
			maxRunning.Store(cur)
		}
		if n.Add(1) == 1 {
			<-release
		}
		running.Add(-1)
		return nil
	}, discard())
	stop := start(t, s)
	defer stop()

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 10; i++ {
		s.Kick()
	}
	close(release)

	require.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), n.Load(), "ten kicks during a fetch queue one more fetch")
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestFetchErrorsDoNotStop(t *testing.T) {
	var n atomic.Int32
	focus := NewFocus()
	s := New(func(context.Context) error {
		n.Add(1)
		return errors.New("offline")
	}, discard(), focus)
	stop := start(t, s)
	defer stop()

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	focus.Notify()
	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPushTrigger(t *testing.T) {
	var gotToken atomic.Value
	var mu sync.Mutex
	var serverConn *websocket.Conn
	connected := make(chan struct{})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken.Store(r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		serverConn = conn
		mu.Unlock()
		close(connected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var n atomic.Int32
	push := &Push{
		URL:    "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders",
		Token:  func() string { return "tok-123" },
		Retry:  10 * time.Millisecond,
		Logger: discard(),
	}
	s := New(func(context.Context) error { n.Add(1); return nil }, discard(), push)
	stop := start(t, s)
	defer stop()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("push trigger never connected")
	}
	assert.Equal(t, "tok-123", gotToken.Load())
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	err := serverConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"order.updated","order_id":"a"}`))
	mu.Unlock()
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestCountEvents(t *testing.T) {
	n, err := countEvents([]byte("{\"type\":\"order.updated\",\"order_id\":\"a\"}\n{\"type\":\"order.deleted\",\"order_id\":\"b\"}"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = countEvents([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = countEvents([]byte(`{not json`))
	assert.Error(t, err)
}
