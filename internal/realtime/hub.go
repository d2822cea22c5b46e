// Package realtime fans newly posted board messages out to websocket
// subscribers of the same event.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/logger"
)

// TypeMessageCreated tags a new board message
const TypeMessageCreated = "message_created"

// Envelope is the frame written to subscribers
type Envelope struct {
	Type    string    `json:"type"`
	EventID uuid.UUID `json:"eventId"`
	Payload any       `json:"payload"`
}

type broadcast struct {
	eventID uuid.UUID
	data    []byte
}

// Hub owns the subscriber set. All mutation happens on the Run goroutine.
type Hub struct {
	// eventID -> clients subscribed to that board
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	done       chan struct{}

	mu  sync.RWMutex
	log *log.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast, 64),
		done:       make(chan struct{}),
		log:        logger.Service("realtime"),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects everybody
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.mu.Unlock()
			h.log.Info("realtime hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[c.eventID]; !ok {
				h.clients[c.eventID] = make(map[*Client]struct{})
			}
			h.clients[c.eventID][c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("subscriber joined", "event_id", c.eventID)

		case c := <-h.unregister:
			h.remove(c)
			h.log.Debug("subscriber left", "event_id", c.eventID)

		case b := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients[b.eventID] {
				select {
				case c.send <- b.data:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients[b.eventID], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.eventID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.eventID)
	}
}

// Publish queues payload for every subscriber of eventID. It never blocks
// the caller; frames are dropped when the hub is stopped or saturated.
func (h *Hub) Publish(eventID uuid.UUID, payload any) {
	data, err := json.Marshal(Envelope{Type: TypeMessageCreated, EventID: eventID, Payload: payload})
	if err != nil {
		h.log.Error("failed to marshal frame", "event_id", eventID, "error", err)
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- broadcast{eventID: eventID, data: data}:
	default:
		h.log.Warn("broadcast queue full, dropping frame", "event_id", eventID)
	}
}

// Subscribers returns how many clients follow eventID
func (h *Hub) Subscribers(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[eventID])
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
