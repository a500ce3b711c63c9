package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is a minimal websocket hub that maps userID -> set of websocket
// connections. It is fed by the Notifier's Redis pattern subscription and
// fans incoming notification payloads out to the recipient's connections.
//
// Delivery is best-effort: a user with no open connection simply misses the
// push and catches up through the paginated notification list.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*websocket.Conn]struct{})}
}

// Register a connection for a given userID
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*websocket.Conn]struct{})
		h.conns[userID] = m
	}
	m[conn] = struct{}{}
}

// Unregister removes a connection
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[userID]; ok {
		delete(m, conn)
		if len(m) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID int64, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conns, ok := h.conns[userID]; ok {
		for c := range conns {
			if err := c.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				log.Printf("[Hub] websocket write error: user=%d err=%v", userID, err)
			}
		}
	}
}

// ConnectionCount reports how many open connections the user has.
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring connects the Notifier to this hub: it subscribes to the Redis
// pattern and forwards payloads to the matching userID's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		// channel form: notifications:user:<id>
		var userID int64
		_, err := fmt.Sscanf(channel, "notifications:user:%d", &userID)
		if err != nil {
			log.Printf("[Hub] invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}
