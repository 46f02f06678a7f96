package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kiwari-pos/stockroom/internal/auth"
	"github.com/kiwari-pos/stockroom/internal/domain"
)

// mockClient creates a client without a real websocket connection.
func mockClient(hub *Hub, companyID int64) *Client {
	return &Client{
		hub:       hub,
		companyID: companyID,
		send:      make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, 1)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if !hub.rooms[1][client] {
		t.Fatal("client not registered in company room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)
	client1 := mockClient(hub, 1)
	client2 := mockClient(hub, 1)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)
	if n := hub.Clients(1); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)
	if n := hub.Clients(1); n != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", n)
	}

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[1] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestBroadcastIsolatesCompanies(t *testing.T) {
	hub := startHub(t)

	clients := map[int64][]*Client{
		1: {mockClient(hub, 1), mockClient(hub, 1)},
		2: {mockClient(hub, 2), mockClient(hub, 2)},
		3: {mockClient(hub, 3)},
	}
	for _, list := range clients {
		for _, c := range list {
			hub.register <- c
		}
	}
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(2, domain.Event{Type: "order.updated", OrderID: "abc"})

	for companyID, list := range clients {
		for i, c := range list {
			select {
			case msg := <-c.send:
				if companyID != 2 {
					t.Fatalf("company %d client %d should not receive message", companyID, i)
				}
				var got domain.Event
				if err := json.Unmarshal(msg, &got); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if got.Type != "order.updated" || got.OrderID != "abc" {
					t.Errorf("wrong event: %+v", got)
				}
			case <-time.After(50 * time.Millisecond):
				if companyID == 2 {
					t.Fatalf("company 2 client %d should have received message", i)
				}
			}
		}
	}
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.Broadcast(1, domain.Event{Type: "order.deleted"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a stopped hub")
	}
}

func TestServeWS(t *testing.T) {
	const secret = "ws-secret"
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, secret, w, r)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("rejects missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err == nil {
			t.Fatal("expected dial to fail")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", resp)
		}
	})

	t.Run("delivers company events", func(t *testing.T) {
		token, err := auth.GenerateToken(secret, 5, 9, "member")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()

		deadline := time.Now().Add(time.Second)
		for hub.Clients(9) == 0 {
			if time.Now().After(deadline) {
				t.Fatal("client never registered")
			}
			time.Sleep(5 * time.Millisecond)
		}

		hub.Broadcast(9, domain.Event{Type: "order.updated", OrderID: "o-1"})

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var got domain.Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.OrderID != "o-1" {
			t.Errorf("order id: got %q, want o-1", got.OrderID)
		}
	})
}
