package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/media"
)

// MediaHandler serves stored recipe images and avatars.
type MediaHandler struct {
	store     media.Store
	urlPrefix string
	logger    zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(store media.Store, urlPrefix string, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		store:     store,
		urlPrefix: urlPrefix,
		logger:    logger.With().Str("handler", "media").Logger(),
	}
}

// RegisterRoutes registers the media file route under the configured
// public prefix.
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	pattern := strings.TrimSuffix(h.urlPrefix, "/") + "/{key}"
	r.Get(pattern, h.handleGet)
}

func (h *MediaHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	obj, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, media.ErrObjectNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "object not found"})
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("failed to open media object")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	defer obj.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, obj)
}
