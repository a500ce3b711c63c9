package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"socialink/internal/httputil"
	"socialink/internal/realtime"
	"socialink/internal/transport/http/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The access token already authenticates the connection; cross-origin
	// browser clients are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RealtimeHandler upgrades authenticated clients to a websocket that
// receives live notification pushes.
type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect handles GET /ws/notifications
// The connection is push-only: inbound messages are read and discarded so the
// read loop can detect the close.
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[RealtimeHandler] upgrade FAILED: user=%d err=%v", userID, err)
		return
	}

	h.hub.Register(userID, conn)
	log.Printf("[RealtimeHandler] connected: user=%d conns=%d", userID, h.hub.ConnectionCount(userID))

	go func() {
		defer func() {
			h.hub.Unregister(userID, conn)
			conn.Close()
			log.Printf("[RealtimeHandler] disconnected: user=%d", userID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
