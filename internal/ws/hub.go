package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/kiwari-pos/stockroom/internal/domain"
)

// companyEvent routes an event to one company's room.
type companyEvent struct {
	CompanyID int64
	Event     domain.Event
}

// Hub maintains the set of active clients and broadcasts order events to them.
type Hub struct {
	// Registered clients by company ID
	rooms map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *companyEvent

	// closed once Run returns; Broadcast never blocks after that
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *companyEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, after closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.companyID] == nil {
				h.rooms[client.companyID] = make(map[*Client]bool)
			}
			h.rooms[client.companyID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				log.Printf("ERROR: marshal ws event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.CompanyID] {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes client and closes its send channel. Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.rooms[client.companyID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.companyID)
	}
}

// Broadcast queues an event for every client of the company.
func (h *Hub) Broadcast(companyID int64, event domain.Event) {
	select {
	case h.broadcast <- &companyEvent{CompanyID: companyID, Event: event}:
	case <-h.done:
	}
}

// Clients returns the number of connected clients for the company.
func (h *Hub) Clients(companyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[companyID])
}
