package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60

	// EventNotification is the WebSocket event carrying a models.Notification.
	EventNotification = "notification"
)

// Subscriber subscribes to a user's channel and invokes handler for incoming events.
type Subscriber interface {
	SubscribeUser(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains user_id -> set of connections. A user may have several tabs open; each instance holds
// one Redis subscription per connected user, started with the first connection and cancelled with the last.
type Hub struct {
	users  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]*subscription
	mu     sync.RWMutex
	logger *zap.Logger
	sub    Subscriber
}

// subscription is a user's Redis subscription. cancel is nil while SubscribeUser is in flight.
type subscription struct {
	cancel func()
}

// NewHub creates a new WebSocket hub. sub may be nil for a single-instance deployment.
func NewHub(logger *zap.Logger, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]*subscription),
		logger: logger,
		sub:    sub,
	}
}

// Register adds a client to its user's set. The Redis subscription is opened outside the hub lock.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.users[c.UserID] == nil {
		h.users[c.UserID] = make(map[string]*Client)
	}
	h.users[c.UserID][c.ID] = c
	var pending *subscription
	if h.sub != nil && h.subs[c.UserID] == nil {
		pending = &subscription{}
		h.subs[c.UserID] = pending
	}
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))

	if pending != nil {
		h.subscribe(c.UserID, pending)
	}
}

func (h *Hub) subscribe(userID uuid.UUID, pending *subscription) {
	cancel, err := h.sub.SubscribeUser(userID, func(event string, payload []byte) {
		h.SendToUser(userID, event, json.RawMessage(payload))
	})

	h.mu.Lock()
	current := h.subs[userID] == pending
	switch {
	case err != nil:
		if current {
			delete(h.subs, userID)
		}
	case current:
		pending.cancel = cancel
	}
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("subscribe user channel failed", zap.Error(err), zap.String("user_id", userID.String()))
		return
	}
	if !current {
		// the last client left while subscribing
		cancel()
	}
}

// Unregister removes a client and closes its send channel. The user's subscription ends with the last client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.users[c.UserID]
	if !ok {
		return
	}
	if _, ok := m[c.ID]; !ok {
		return
	}
	delete(m, c.ID)
	close(c.send)
	if len(m) == 0 {
		delete(h.users, c.UserID)
		if s, ok := h.subs[c.UserID]; ok {
			if s.cancel != nil {
				s.cancel()
			}
			delete(h.subs, c.UserID)
		}
	}
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// SendToUser delivers a message to every local connection of userID. Slow clients drop messages.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal ws payload failed", zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[userID] {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("client send buffer full, dropping message", zap.String("client_id", c.ID))
		}
	}
}

// ConnectionCount returns the number of local connections for a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
