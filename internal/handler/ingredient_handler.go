package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/service"
)

// IngredientHandler serves the ingredient reference catalog.
type IngredientHandler struct {
	ingredientService *service.IngredientService
	logger            zerolog.Logger
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(ingredientService *service.IngredientService, logger zerolog.Logger) *IngredientHandler {
	return &IngredientHandler{
		ingredientService: ingredientService,
		logger:            logger.With().Str("handler", "ingredient").Logger(),
	}
}

// RegisterRoutes registers ingredient catalog routes.
func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/ingredients", h.handleList)
	r.Get("/api/ingredients/{id}", h.handleGet)
}

func (h *IngredientHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredientService.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

func (h *IngredientHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "ingredient not found"})
		return
	}

	ing, err := h.ingredientService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}
