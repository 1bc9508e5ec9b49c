// Package socket pushes live workspace events (new submissions, visits) to
// connected dashboards over WebSocket. Clients subscribe to one workspace
// per connection; membership is verified at the handshake.
package socket

import (
	"encoding/json"
	"log"
	"sync/atomic"
)

// Event is the wire format pushed to dashboard clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type workspaceEvent struct {
	workspaceID string
	payload     []byte
}

type Hub struct {
	// rooms maps workspace id to the clients watching it
	rooms map[string]map[*Client]bool

	// connections mirrors the total client count across rooms so other
	// goroutines can read it without touching the maps.
	connections atomic.Int64

	register   chan *Client
	unregister chan *Client
	broadcast  chan workspaceEvent
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan workspaceEvent, 64),
	}
}

// Run owns all room state; it must be the only goroutine touching rooms.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room, ok := h.rooms[client.workspaceID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.workspaceID] = room
			}
			room[client] = true
			h.connections.Add(1)

		case client := <-h.unregister:
			if room, ok := h.rooms[client.workspaceID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					h.connections.Add(-1)
					if len(room) == 0 {
						delete(h.rooms, client.workspaceID)
					}
				}
			}

		case event := <-h.broadcast:
			for client := range h.rooms[event.workspaceID] {
				select {
				case client.send <- event.payload:
				default:
					// Slow consumer, drop the connection.
					delete(h.rooms[event.workspaceID], client)
					close(client.send)
					h.connections.Add(-1)
				}
			}
		}
	}
}

// BroadcastToWorkspace fans an event out to every dashboard watching the
// workspace. Safe to call from any goroutine.
func (h *Hub) BroadcastToWorkspace(workspaceID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		log.Printf("[SOCKET] Failed to marshal %s event: %v", event, err)
		return
	}
	h.broadcast <- workspaceEvent{workspaceID: workspaceID, payload: data}
}

// ConnectionCount reports the number of open dashboard connections. Safe to
// call from any goroutine; room state itself stays owned by Run.
func (h *Hub) ConnectionCount() int {
	return int(h.connections.Load())
}
