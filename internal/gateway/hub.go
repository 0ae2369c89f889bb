// Package gateway pushes each completed run bundle to websocket clients.
// Dashboards connect once and receive the latest bundle immediately, then
// every new bundle as runs complete.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"stock-signals/internal/model"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Read-only push feed, cross-origin dashboards are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans completed bundles out to connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  []byte // last broadcast envelope, replayed to new clients
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Run consumes bundles from ch and broadcasts each one. Blocks until ctx
// is cancelled or ch is closed.
func (h *Hub) Run(ctx context.Context, ch <-chan *model.ResultBundle) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast(b)
		}
	}
}

// Broadcast sends a bundle to every connected client. Slow clients with a
// full send queue are skipped, they catch up on the next bundle.
func (h *Hub) Broadcast(b *model.ResultBundle) {
	envelope, err := json.Marshal(map[string]interface{}{
		"type": "signals",
		"data": b,
		"ts":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("[gateway] encode bundle: %v", err)
		return
	}

	h.mu.Lock()
	h.latest = envelope
	n := 0
	for client := range h.clients {
		select {
		case client.send <- envelope:
			n++
		default:
		}
	}
	h.mu.Unlock()

	if n > 0 {
		log.Printf("[gateway] broadcast bundle to %d clients", n)
	}
}

// HandleWS upgrades the HTTP connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 16),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	if h.latest != nil {
		client.send <- h.latest
	}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.writePump()
	go client.readPump()
}

// removeClient unregisters a client. Safe to call more than once.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
