package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/blob"
)

// PhotoSource reads stored photos back by key.
type PhotoSource interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// PhotosHandler serves photos kept in the database blob backend.
type PhotosHandler struct {
	Photos PhotoSource
}

// Get handles GET /api/photos/{key...}.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !blob.ValidKey(key) {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	data, contentType, err := h.Photos.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Keys are random and never rewritten.
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
