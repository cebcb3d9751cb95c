package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is the envelope pushed to subscribed clients. Room carries the
// category name so front-ends can scope their subscriptions to one draw.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
}

// Hub fans events out to websocket clients grouped by room. A room maps
// one-to-one to a tournament category.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes registrations until the process exits. Call it from its
// own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Info("websocket client joined", "room", client.room, "clients_in_room", len(h.rooms[client.room]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.closeSend()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.room)
					}
					h.logger.Info("websocket client left", "room", client.room, "clients_in_room", len(roomClients))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish serializes the event and delivers it to every client
// subscribed to the room. Clients with a full send buffer are skipped
// rather than blocked on.
func (h *Hub) Publish(room, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[room]
	if !ok || len(roomClients) == 0 {
		return
	}

	message, err := json.Marshal(Event{Type: eventType, Payload: payload, Room: room})
	if err != nil {
		h.logger.Error("failed to marshal live event", "room", room, "type", eventType, "error", err)
		return
	}

	for client := range roomClients {
		client.enqueue(message)
	}
}
