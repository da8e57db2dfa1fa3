package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func connectClient(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	return conn
}

func TestBroadcastDeliversEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := connectClient(t, hub)

	hub.Broadcast(Event{Type: "subscription.activated"})

	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "subscription.activated", got.Type)
	require.False(t, got.At.IsZero())
}

func TestBroadcastConcurrent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := connectClient(t, hub)

	got := make(chan Event, 256)
	go func() {
		defer close(got)
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			got <- ev
		}
	}()

	// Many subscriptions completing at once all push through the hub.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				hub.Broadcast(Event{Type: "subscription.activated"})
			}
		}()
	}
	wg.Wait()

	select {
	case ev := <-got:
		require.Equal(t, "subscription.activated", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBroadcastDropsGoneClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := connectClient(t, hub)

	conn.Close()

	// The read loop notices the close and unregisters the client.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(Event{Type: "subscription.activated"})
}
