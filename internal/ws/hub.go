package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of connected clients and pushes coordination events
// to them. It never touches the database: handlers decide who should hear
// about an event and pass the participant IDs in.
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// If user already has a connection, close the old one
	if existingClient, ok := h.Clients[client.ID]; ok {
		close(existingClient.Send)
	}

	h.Clients[client.ID] = client
	log.Printf("Client connected: %s", client.ID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.Clients[client.ID]; ok && current == client {
		delete(h.Clients, client.ID)
		close(client.Send)
		log.Printf("Client disconnected: %s", client.ID)
	}
}

// NotifyUsers pushes an event to every listed user that is currently
// connected. Best-effort: a slow client's full buffer drops the event for
// that client only.
func (h *Hub) NotifyUsers(userIDs []string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		if client, ok := h.Clients[userID]; ok {
			select {
			case client.Send <- data:
			default:
				log.Printf("Dropped event for slow client: %s", userID)
			}
		}
	}
}

// IsConnected checks if a user currently has a live event feed
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// ConnectedUsers returns a list of currently connected user IDs
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]string, 0, len(h.Clients))
	for userID := range h.Clients {
		userIDs = append(userIDs, userID)
	}

	return userIDs
}

// ConnectedCount returns the number of currently connected clients
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.Clients)
}
