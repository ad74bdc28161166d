package events

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"riffbox/internal/riffbox"
)

// clientBuffer is how many events a slow client may lag behind before
// events are dropped for it.
const clientBuffer = 100

// Hub is an EventBus that broadcasts every event as {"type","data"} JSON to
// connected websocket clients. Publish never blocks on a client.
type Hub struct {
	upgrader websocket.Upgrader
	logger   riffbox.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan riffbox.Event
}

var _ riffbox.EventBus = (*Hub)(nil)

// NewHub creates a Hub accepting connections from any origin.
func NewHub(logger riffbox.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan riffbox.Event),
	}
}

// ServeHTTP upgrades the request and streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan riffbox.Event, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		close(ch)
		conn.Close()
		h.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
	}()

	go func() {
		for e := range ch {
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}()

	// Drain incoming frames so close and ping control messages are handled.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) Publish(e riffbox.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, ch := range h.clients {
		select {
		case ch <- e:
		default:
			h.logger.Warn("websocket client lagging, event dropped", "remote", conn.RemoteAddr().String(), "type", e.Type)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.Close()
	}
	return nil
}
