// Package ws fans live events out to WebSocket subscribers.
package ws

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
)

// Hub stores all active WebSocket connections and broadcasts bus events to
// them. A connection that fails a write is dropped.
type Hub struct {
	bus *eventbus.Bus

	mu      sync.RWMutex
	nextID  int
	clients map[int]*websocket.Conn
}

// NewHub creates a new Hub.
func NewHub(bus *eventbus.Bus) *Hub {
	return &Hub{
		bus:     bus,
		clients: make(map[int]*websocket.Conn),
	}
}

// Add registers a new connection and returns its ID.
func (h *Hub) Add(conn *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.clients[id] = conn
	return id
}

// Remove deletes and closes a connection.
func (h *Hub) Remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.clients[id]; ok {
		_ = conn.Close()
		delete(h.clients, id)
	}
}

// ClientCount returns the number of active connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run consumes bus events and broadcasts them until the context is
// cancelled. All connections are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	events, cancel := h.bus.Subscribe(256)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case evt, ok := <-events:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(evt)
		}
	}
}

func (h *Hub) broadcast(evt eventbus.Event) {
	h.mu.RLock()
	conns := make(map[int]*websocket.Conn, len(h.clients))
	for id, conn := range h.clients {
		conns[id] = conn
	}
	h.mu.RUnlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(evt); err != nil {
			log.Printf("[WS] write failed for client %d: %v", id, err)
			h.Remove(id)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, id)
	}
}
