package chat

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub is the session registry: it maintains, per session ID, the set of
// currently attached viewer connections and fans payloads out to them.
// Cross-instance delivery goes through an optional Redis pub/sub bridge.
type Hub struct {
	// sessionID -> map[clientID]*Client
	sessions map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per session
	mu       sync.RWMutex
	logger   *zap.Logger
	pubsub   *RedisPubSub
}

// NewHub creates a session hub. pubsub may be nil for single-instance mode.
func NewHub(logger *zap.Logger, pubsub *RedisPubSub) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		pubsub:   pubsub,
	}
}

// Attach adds a viewer connection to a session, creating the viewer set if
// absent. Attaching an already-attached connection is a no-op. The first
// viewer of a session starts the Redis subscription for that session.
func (h *Hub) Attach(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]*Client)
		if h.pubsub != nil {
			cancel, err := h.pubsub.Subscribe(sessionID, func(payload []byte) {
				h.deliver(sessionID, payload)
			})
			if err != nil {
				h.logger.Warn("session subscribe failed", zap.String("session_id", sessionID), zap.Error(err))
			} else {
				h.subs[sessionID] = cancel
			}
		}
	}
	if _, ok := h.sessions[sessionID][c.ID]; ok {
		return
	}
	h.sessions[sessionID][c.ID] = c
	h.logger.Debug("viewer attached", zap.String("client_id", c.ID), zap.String("session_id", sessionID))
}

// Detach removes a viewer connection and signals it to stop. When the last
// viewer leaves, the session entry and its Redis subscription are removed.
func (h *Hub) Detach(sessionID string, c *Client) {
	h.mu.Lock()
	if m, ok := h.sessions[sessionID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.sessions, sessionID)
			if cancel, ok := h.subs[sessionID]; ok {
				cancel()
				delete(h.subs, sessionID)
			}
		}
	}
	h.mu.Unlock()
	c.stop()
	h.logger.Debug("viewer detached", zap.String("client_id", c.ID), zap.String("session_id", sessionID))
}

// Broadcast delivers payload to every viewer of the session on this instance
// and publishes it for other instances.
func (h *Hub) Broadcast(sessionID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal broadcast payload", zap.Error(err))
		return
	}
	h.deliver(sessionID, data)
	if h.pubsub != nil {
		if err := h.pubsub.Publish(sessionID, data); err != nil {
			h.logger.Warn("publish session event", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

// deliver sends data to a point-in-time snapshot of the session's viewers.
// A viewer whose send fails is detached; the remaining deliveries proceed.
func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[sessionID]))
	for _, c := range h.sessions[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			h.logger.Debug("send failed, detaching viewer", zap.String("client_id", c.ID), zap.String("session_id", sessionID))
			h.Detach(sessionID, c)
		}
	}
}

// ViewerCount returns the number of connections attached to a session.
func (h *Hub) ViewerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}
