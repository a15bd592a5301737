package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/damione1/pokersync/internal/config"
	"github.com/damione1/pokersync/internal/models"
)

// Hub fans outbound events out to every connection currently joined to a
// room. Registrations and broadcasts flow through a single actor loop, so a
// registration that was submitted before a broadcast is always applied
// before it. Delivery is fire-and-forget: no acknowledgment is awaited and
// slow clients are dropped rather than blocking the loop.
type Hub struct {
	// Room connections: roomId -> set of clients
	rooms map[string]map[*Client]bool

	broadcast  chan *BroadcastMessage
	register   chan *Registration
	unregister chan *Registration

	metrics *Metrics

	mu sync.RWMutex
}

type Registration struct {
	RoomID string
	Client *Client
}

type BroadcastMessage struct {
	RoomID  string
	Message *models.WSMessage
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *BroadcastMessage, config.HubBroadcastBufferSize),
		register:   make(chan *Registration),
		unregister: make(chan *Registration),
		metrics:    metrics,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case reg := <-h.register:
			h.registerClient(reg)

		case reg := <-h.unregister:
			h.unregisterClient(reg)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)
		}
	}
}

func (h *Hub) registerClient(reg *Registration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[reg.RoomID] == nil {
		h.rooms[reg.RoomID] = make(map[*Client]bool)
	}
	h.rooms[reg.RoomID][reg.Client] = true

	log.Printf("✓ Connection registered: room=%s conn=%s (connections in room: %d)",
		reg.RoomID, reg.Client.ConnectionID(), len(h.rooms[reg.RoomID]))
}

func (h *Hub) unregisterClient(reg *Registration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[reg.RoomID]; ok {
		if _, exists := clients[reg.Client]; exists {
			delete(clients, reg.Client)

			// Drop the fan-out set once the last connection is gone. Room
			// state itself lives in the registry and is cleaned up there.
			if len(clients) == 0 {
				delete(h.rooms, reg.RoomID)
			}
		}
	}
}

func (h *Hub) broadcastToRoom(msg *BroadcastMessage) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[msg.RoomID]))
	for client := range h.rooms[msg.RoomID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(msg.Message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}

	log.Printf("📤 Broadcasting %s to room %s (%d connections)",
		msg.Message.Type, msg.RoomID, len(clients))

	for _, client := range clients {
		client.Send(data)
	}
}

// BroadcastToRoom queues an event for delivery to every connection in a
// room. Broadcasts queued from a single goroutine are delivered in order.
func (h *Hub) BroadcastToRoom(roomID string, message *models.WSMessage) {
	h.broadcast <- &BroadcastMessage{
		RoomID:  roomID,
		Message: message,
	}
}

// SendToClient delivers an event to a single connection, bypassing room
// fan-out. Used for error acknowledgments.
func (h *Hub) SendToClient(client *Client, message *models.WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}
	client.Send(data)
}

// Register subscribes a client to a room's broadcasts. The call returns once
// the actor loop has accepted the registration, so a broadcast queued
// afterwards will reach the client.
func (h *Hub) Register(roomID string, client *Client) {
	h.register <- &Registration{RoomID: roomID, Client: client}
}

func (h *Hub) Unregister(roomID string, client *Client) {
	h.unregister <- &Registration{RoomID: roomID, Client: client}
}

// ConnectionsInRoom reports the number of connections currently subscribed
// to a room.
func (h *Hub) ConnectionsInRoom(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// GetMetrics returns a snapshot of the server metrics.
func (h *Hub) GetMetrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}
