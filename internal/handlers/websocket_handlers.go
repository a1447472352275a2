package handlers

import (
	"net/http"

	"chat-server/internal/auth"
	"chat-server/internal/chat"
	"chat-server/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	authService *auth.Service
	engine      *chat.Engine
	presence    *chat.Presence
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, engine *chat.Engine, presence *chat.Presence) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		engine:      engine,
		presence:    presence,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket authenticates the handshake, upgrades the connection
// and binds the session before any channel traffic is possible.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserFromToken(r.Context(), tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := chat.NewClient(h.engine, conn)
	if err := h.engine.Connect(client.SessionID(), client); err != nil {
		logger.Error("Error registering session: %v", err)
		conn.Close()
		return
	}
	if err := h.engine.Authenticate(client.SessionID(), user.ID, user.Name); err != nil {
		logger.Error("Error binding user to session: %v", err)
		conn.Close()
		return
	}

	logger.Info("User %d connected on session %s", user.ID, client.SessionID())

	go client.WritePump()
	go client.ReadPump()
}

// Presence reports online status for every user seen since startup.
func (h *WebSocketHandlers) Presence(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.presence.Snapshot())
}
