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

type UserHandlers struct {
	users       database.UserRepository
	authService *auth.Service
}

func NewUserHandlers(users database.UserRepository, authService *auth.Service) *UserHandlers {
	return &UserHandlers{
		users:       users,
		authService: authService,
	}
}

func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		logger.Error("List users error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := bearerUser(r, h.authService); err != nil {
		writeError(w, err)
		return
	}

	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := bearerUser(r, h.authService)
	if err != nil {
		writeError(w, err)
		return
	}

	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}
	if caller.ID != userID && caller.Role != "admin" {
		writeError(w, chat.ErrUnauthorized)
		return
	}

	var req models.UpdateUserRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Update user error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := bearerUser(r, h.authService)
	if err != nil {
		writeError(w, err)
		return
	}

	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}
	if caller.ID != userID && caller.Role != "admin" {
		writeError(w, chat.ErrUnauthorized)
		return
	}

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		logger.Error("Delete user error: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
}
