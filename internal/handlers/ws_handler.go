package handlers

import (
	"net/http"
	"sync"

	"github.com/Prakhar2818/NGO-APP/internal/models"
	"github.com/Prakhar2818/NGO-APP/pkg/jwt"
	"github.com/Prakhar2818/NGO-APP/pkg/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub is the process-wide registry of connected NGO sessions. It is the
// pub/sub transport behind services.Broadcaster: Publish writes the
// event to every live connection and drops the ones that fail. Sessions
// that connect after an event was published never see it.
type Hub struct {
	JWTSecret string

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub creates an empty session registry.
func NewHub(jwtSecret string) *Hub {
	return &Hub{
		JWTSecret: jwtSecret,
		clients:   make(map[string]*websocket.Conn),
	}
}

// Publish broadcasts a donation event to all connected sessions.
// Best-effort: a dead connection is unregistered, not retried.
func (h *Hub) Publish(event models.DonationEvent) {
	payload := map[string]interface{}{
		"type":     "new-donation",
		"donation": event,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conn := range h.clients {
		if err := conn.WriteJSON(payload); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("Dropping dead websocket client")
			conn.Close()
			delete(h.clients, userID)
		}
	}
}

// ServeWS upgrades the connection and keeps it registered until the
// client goes away. Auth is a token query parameter, same as the chat
// sockets elsewhere in the product.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwt.ValidateToken(token, h.JWTSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	// Only NGO sessions subscribe to the donation feed.
	if claims.Role != models.RoleNGO {
		http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	userID := claims.UserID
	h.mu.Lock()
	if old, ok := h.clients[userID]; ok {
		old.Close()
	}
	h.clients[userID] = conn
	h.mu.Unlock()

	logger.Log.WithField("user_id", userID).Info("WebSocket connected")

	defer func() {
		h.mu.Lock()
		if h.clients[userID] == conn {
			delete(h.clients, userID)
		}
		h.mu.Unlock()
		conn.Close()
		logger.Log.WithField("user_id", userID).Info("WebSocket disconnected")
	}()

	// Subscribers only listen; reads just detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
