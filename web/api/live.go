package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one message pushed to connected displays.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans events out to connected websocket clients. Slow clients
// are dropped rather than allowed to stall the feed.
type Hub struct {
	clients    map[chan Event]bool
	broadcast  chan Event
	register   chan chan Event
	unregister chan chan Event
	mu         sync.RWMutex

	upgrader websocket.Upgrader
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[chan Event]bool),
		broadcast:  make(chan Event, 16),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		upgrader: websocket.Upgrader{
			// Result displays connect from other origins on the LAN.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run processes registrations and broadcasts until the process ends.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					close(client)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for all clients.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		// Feed full; the displays will catch up from /api/results.
	}
}

// HandleWebSocket upgrades a connection and streams events to it.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	client := make(chan Event, 8)
	h.register <- client

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister <- client
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for event := range client {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}()
}
