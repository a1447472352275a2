package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-server/internal/storage"

	"github.com/stretchr/testify/require"
)

func newUploadMux(t *testing.T) (*http.ServeMux, *storage.Store) {
	t.Helper()

	store, err := storage.NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	h := NewFileHandlers(nil, store, nil, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /uploads/{name}", h.ServeUpload)
	return mux, store
}

func TestServeUpload_AdvertisedURLResolves(t *testing.T) {
	mux, store := newUploadMux(t)

	content := []byte("%PDF-1.4 hello")
	saved, err := store.Save("report.pdf", content)
	require.NoError(t, err)

	// the URL handed out in upload responses and receiveMessage events
	req := httptest.NewRequest(http.MethodGet, saved.URL, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, content, rec.Body.Bytes())
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestServeUpload_UnknownNameIs404(t *testing.T) {
	mux, _ := newUploadMux(t)

	req := httptest.NewRequest(http.MethodGet, "/uploads/no-such-blob.bin", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
