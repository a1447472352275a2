package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"chat-server/internal/auth"
	"chat-server/internal/chat"
	"chat-server/internal/database"
	"chat-server/internal/models"
	"chat-server/internal/storage"
	"chat-server/pkg/logger"
)

type FileHandlers struct {
	files       database.FileRepository
	store       *storage.Store
	engine      *chat.Engine
	authService *auth.Service
}

func NewFileHandlers(files database.FileRepository, store *storage.Store, engine *chat.Engine, authService *auth.Service) *FileHandlers {
	return &FileHandlers{
		files:       files,
		store:       store,
		engine:      engine,
		authService: authService,
	}
}

// UploadFile accepts a multipart upload for a channel, stores the blob
// and publishes the file message through the fan-out engine.
func (h *FileHandlers) UploadFile(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Read one byte past the limit so the size gate can trip before any
	// disk write.
	data, err := io.ReadAll(io.LimitReader(file, h.store.MaxBytes()+1))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > h.store.MaxBytes() {
		http.Error(w, "file exceeds size limit", http.StatusBadRequest)
		return
	}

	saved, err := h.store.Save(header.Filename, data)
	if err != nil {
		logger.Error("File save error: %v", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	record := &models.File{
		ChannelID:    channelID,
		SenderID:     user.ID,
		StoredName:   saved.StoredName,
		OriginalName: saved.OriginalName,
		MimeType:     saved.MimeType,
		FileType:     saved.Category,
		SizeBytes:    saved.Size,
	}
	fileID, err := h.files.CreateFile(r.Context(), record)
	if err != nil {
		logger.Error("File record error: %v", err)
		h.store.Remove(saved.StoredName)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	content := fmt.Sprintf("Sent a file: %s", header.Filename)
	msg, err := h.engine.Publish(r.Context(), channelID, user.ID, user.Name, content, saved.URL, saved.Category)
	if err != nil {
		logger.Error("File message error: %v", err)
		h.store.Remove(saved.StoredName)
		h.files.DeleteFile(r.Context(), fileID)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        fileID,
		"messageId": msg.ID,
		"filename":  saved.OriginalName,
		"type":      saved.Category,
		"url":       saved.URL,
		"message":   "File uploaded successfully",
	})
}

// GetFile streams a stored blob back with its original name.
func (h *FileHandlers) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid file ID", http.StatusBadRequest)
		return
	}

	record, err := h.files.GetFileByID(r.Context(), fileID)
	if err != nil {
		writeError(w, err)
		return
	}

	reader, size, err := h.store.Open(record.StoredName)
	if err != nil {
		logger.Error("File open error: %v", err)
		http.Error(w, "file not found on server", http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", record.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", record.OriginalName))
	io.Copy(w, reader)
}

// ServeUpload serves a stored blob by the name embedded in message
// fileUrl values, so every advertised "/uploads/..." URL resolves.
func (h *FileHandlers) ServeUpload(w http.ResponseWriter, r *http.Request) {
	path, err := h.store.Path(r.PathValue("name"))
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

// DeleteFile removes a blob and its record. Only the uploading user may
// delete it.
func (h *FileHandlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	user, err := bearerUser(r, h.authService)
	if err != nil {
		writeError(w, err)
		return
	}

	fileID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid file ID", http.StatusBadRequest)
		return
	}

	record, err := h.files.GetFileByID(r.Context(), fileID)
	if err != nil {
		writeError(w, err)
		return
	}
	if record.SenderID != user.ID {
		writeError(w, chat.ErrUnauthorized)
		return
	}

	if err := h.store.Remove(record.StoredName); err != nil {
		logger.Error("Blob remove error: %v", err)
	}
	if err := h.files.DeleteFile(r.Context(), fileID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
