package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types pushed to board displays.
const (
	TypeSnapshotRefreshed = "snapshot_refreshed"
	TypeChronicleUpdated  = "chronicle_updated"
	TypeQuestCompleted    = "quest_completed"
	TypeQuestCancelled    = "quest_cancelled"
	TypeQuestApproved     = "quest_approved"
	TypeQuestRejected     = "quest_rejected"
	TypeRewardPurchased   = "reward_purchased"
	TypeEquipmentBought   = "equipment_bought"
	TypeEquipmentChanged  = "equipment_changed"
	TypeBossUpdated       = "boss_updated"
)

// Message tells displays that something changed. Displays refetch what they
// show; Data carries only small hints like a level-up.
type Message struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id,omitempty"`
	ID     int64          `json:"id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

func NewMessage(typ, userID string, id int64, data map[string]any) Message {
	return Message{
		Type:   typ,
		UserID: userID,
		ID:     id,
		Data:   data,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("display connected", "clients", n)
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client. Clients with a full buffer miss it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast dropped for slow displays", "type", msg.Type, "dropped", dropped)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
