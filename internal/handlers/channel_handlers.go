package handlers

import (
	"net/http"
	"strconv"

	"chat-server/internal/auth"
	"chat-server/internal/models"
	"chat-server/internal/services"
	"chat-server/pkg/logger"
)

type ChannelHandlers struct {
	channelService *services.ChannelService
	authService    *auth.Service
}

func NewChannelHandlers(channelService *services.ChannelService, authService *auth.Service) *ChannelHandlers {
	return &ChannelHandlers{
		channelService: channelService,
		authService:    authService,
	}
}

func (h *ChannelHandlers) CreateChannel(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	var req models.CreateChannelRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	channel, err := h.channelService.CreateChannel(r.Context(), &req)
	if err != nil {
		logger.Error("Create channel error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, channel)
}

func (h *ChannelHandlers) ListChannels(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channels, err := h.channelService.ListChannels(r.Context())
	if err != nil {
		logger.Error("List channels error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (h *ChannelHandlers) GetChannel(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channelID, err := h.channelID(r)
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := h.channelService.GetChannel(r.Context(), channelID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, channel)
}

func (h *ChannelHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channelID, err := h.channelID(r)
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}

	var req models.AddMemberRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.channelService.AddMember(r.Context(), channelID, req.UserID); err != nil {
		logger.Error("Add member error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user added to channel successfully"})
}

func (h *ChannelHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channelID, err := h.channelID(r)
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}
	userID, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.channelService.RemoveMember(r.Context(), channelID, userID); err != nil {
		logger.Error("Remove member error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user removed from channel successfully"})
}

func (h *ChannelHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	channelID, err := h.channelID(r)
	if err != nil {
		http.Error(w, "invalid channel ID", http.StatusBadRequest)
		return
	}

	members, err := h.channelService.ListMembers(r.Context(), channelID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *ChannelHandlers) ListUserChannels(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	channels, err := h.channelService.ListUserChannels(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (h *ChannelHandlers) channelID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}
