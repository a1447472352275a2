package handlers

import (
	"net/http"
	"strconv"

	"chat-server/internal/auth"
	"chat-server/internal/chat"
	"chat-server/internal/database"
	"chat-server/internal/models"
	"chat-server/pkg/logger"
)

const defaultPageSize = 100

type MessageHandlers struct {
	messages    database.MessageRepository
	engine      *chat.Engine
	authService *auth.Service
}

func NewMessageHandlers(messages database.MessageRepository, engine *chat.Engine, authService *auth.Service) *MessageHandlers {
	return &MessageHandlers{
		messages:    messages,
		engine:      engine,
		authService: authService,
	}
}

// ListMessages returns a channel's messages in ascending id order. The
// optional "since" query parameter resumes after a known message id.
func (h *MessageHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channelID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}

	var sinceID int64
	if since := r.URL.Query().Get("since"); since != "" {
		sinceID, err = strconv.ParseInt(since, 10, 64)
		if err != nil {
			http.Error(w, "invalid since parameter", http.StatusBadRequest)
			return
		}
	}

	messages, err := h.messages.ListByChannel(r.Context(), channelID, sinceID, defaultPageSize)
	if err != nil {
		logger.Error("List messages error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(messages),
		"messages": messages,
	})
}

// SendMessage is the REST send path. It goes through the same engine as
// socket sends, so the message still fans out to live subscribers.
func (h *MessageHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, err := bearerUser(r, h.authService)
	if err != nil {
		writeError(w, err)
		return
	}

	channelID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}

	var req models.SendMessageRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.engine.Publish(r.Context(), channelID, user.ID, user.Name, req.Content, "", "")
	if err != nil {
		logger.Error("Send message error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      msg.ID,
		"message": "Message sent successfully",
	})
}
