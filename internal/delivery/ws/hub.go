// Package ws delivers chat messages over websockets.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

const (
	FrameTypeMessage = "message"
	FrameTypeAck     = "ack"
	FrameTypeError   = "error"
)

// InboundFrame is what a client writes to send a message.
type InboundFrame struct {
	To   int64  `json:"to"`
	Body string `json:"body"`
}

// OutboundFrame is what the server pushes to a client.
type OutboundFrame struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Hub tracks open sockets per user. A user may hold several sockets.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		logger:  logger,
	}
}

// Notify pushes msg to every socket of userID. Slow clients drop frames.
func (h *Hub) Notify(userID int64, msg *domain.Message) {
	h.push(userID, OutboundFrame{Type: FrameTypeMessage, Message: msg})
}

// Connected reports whether userID has at least one open socket.
func (h *Hub) Connected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) push(userID int64, frame OutboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to encode frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping frame for slow client", zap.Int64("user_id", userID))
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}
