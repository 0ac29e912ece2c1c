package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

const (
	EventMessageCreated     = "message_created"
	EventInvitationReceived = "invitation_received"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

// Hub fans events out to every open stream of the target user.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *UserMessage
	mu         sync.RWMutex
}

type UserMessage struct {
	UserID uuid.UUID
	Event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *UserMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.UserID != msg.UserID {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ConnectedClients returns the number of open streams for userID.
func (h *Hub) ConnectedClients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// Publish queues an event for userID. It never blocks; events are dropped when the queue is full.
func (h *Hub) Publish(userID uuid.UUID, eventType string, data interface{}) {
	select {
	case h.broadcast <- &UserMessage{UserID: userID, Event: Event{Type: eventType, Data: data}}:
	default:
	}
}
