package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// outgoingMessage is the frame written to every websocket client.
type outgoingMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Hub tracks live connections and their session groups. It satisfies the
// matchmaking transport and never blocks on a slow peer.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]*client
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHub returns an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]*client),
		logger:  logger.With().Str("component", "realtime").Logger(),
		now:     time.Now,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// unregister drops the client from the hub and from every group.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, connID)
	for group, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Connections reports the number of registered clients.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(outgoingMessage{
		Type:      event,
		Data:      payload,
		Timestamp: h.now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return nil, false
	}
	return frame, true
}

// Emit sends event to one connection.
func (h *Hub) Emit(connID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if frame, ok := h.encode(event, payload); ok {
		c.enqueue(frame)
	}
}

// Join adds the connection to group.
func (h *Hub) Join(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*client)
		h.groups[group] = members
	}
	members[connID] = c
}

// Leave removes the connection from group.
func (h *Hub) Leave(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// BroadcastExcept sends event to every member of group but exceptConnID.
func (h *Hub) BroadcastExcept(group, exceptConnID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.groups[group]))
	for connID, c := range h.groups[group] {
		if connID != exceptConnID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(frame)
	}
}

// Broadcast sends event to every member of group.
func (h *Hub) Broadcast(group, event string, payload any) {
	h.BroadcastExcept(group, "", event, payload)
}
