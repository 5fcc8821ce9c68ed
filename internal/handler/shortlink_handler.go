package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/service"
)

// ShortLinkHandler redirects share tokens to their recipes.
type ShortLinkHandler struct {
	shortLinkService *service.ShortLinkService
	logger           zerolog.Logger
}

// NewShortLinkHandler creates a new ShortLinkHandler.
func NewShortLinkHandler(shortLinkService *service.ShortLinkService, logger zerolog.Logger) *ShortLinkHandler {
	return &ShortLinkHandler{
		shortLinkService: shortLinkService,
		logger:           logger.With().Str("handler", "shortlink").Logger(),
	}
}

// RegisterRoutes registers the short link redirect route.
func (h *ShortLinkHandler) RegisterRoutes(r chi.Router) {
	r.Get("/s/{token}", h.handleResolve)
}

func (h *ShortLinkHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	id, err := h.shortLinkService.Resolve(r.Context(), token)
	switch {
	case err == nil:
		http.Redirect(w, r, fmt.Sprintf("/recipes/%d", id), http.StatusFound)
	case errors.Is(err, domain.ErrInvalidShortLink):
		// Malformed tokens send the visitor to the site root rather
		// than a bare 404 page.
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, domain.ErrRecipeNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "recipe not found"})
	default:
		writeError(w, err)
	}
}
