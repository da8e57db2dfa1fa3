// internal/websocket/hub.go
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// Event is a billing event pushed to connected admin dashboards.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// client owns its connection's writes. Events go through the send channel so
// there is exactly one writer per connection.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans billing events out to connected admin sockets. Delivery is best
// effort; a slow or gone client is dropped, never waited on.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*client),
	}
}

// Handle upgrades the request and keeps the connection registered until the
// peer goes away. Authentication happens before this is reached.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan Event, sendBuffer)}

	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	h.logger.Info("admin socket connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)

	// Read loop exists only to detect the peer closing.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// writePump is its connection's only writer; it drains the send channel until
// unregistration closes it.
func (h *Hub) writePump(c *client) {
	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			h.logger.Warn("dropping admin socket", zap.Error(err))
			h.remove(c.conn)
		}
	}
}

// Broadcast queues an event for every connected client. Safe for concurrent
// use; a client whose buffer is full is dropped rather than waited on.
func (h *Hub) Broadcast(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.Warn("dropping slow admin socket", zap.String("remote", conn.RemoteAddr().String()))
			h.dropLocked(conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	h.dropLocked(conn)
	h.mu.Unlock()
}

// dropLocked unregisters a connection; caller holds h.mu. Closing the send
// channel stops the writer, and the map delete guarantees it happens once.
func (h *Hub) dropLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	_ = conn.Close()
}
