package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/config"
	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/service"
)

// RecipeHandler handles recipe, favorite, and shopping cart requests.
type RecipeHandler struct {
	recipeService       *service.RecipeService
	relationService     *service.RelationService
	shoppingListService *service.ShoppingListService
	shortLinkService    *service.ShortLinkService
	pagination          config.PaginationConfig
	mediaURLPrefix      string
	baseURL             string
	logger              zerolog.Logger
}

// RecipeHandlerConfig contains configuration for the recipe handler.
type RecipeHandlerConfig struct {
	RecipeService       *service.RecipeService
	RelationService     *service.RelationService
	ShoppingListService *service.ShoppingListService
	ShortLinkService    *service.ShortLinkService
	Pagination          config.PaginationConfig
	MediaURLPrefix      string
	BaseURL             string
	Logger              zerolog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(cfg RecipeHandlerConfig) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       cfg.RecipeService,
		relationService:     cfg.RelationService,
		shoppingListService: cfg.ShoppingListService,
		shortLinkService:    cfg.ShortLinkService,
		pagination:          cfg.Pagination,
		mediaURLPrefix:      cfg.MediaURLPrefix,
		baseURL:             cfg.BaseURL,
		logger:              cfg.Logger.With().Str("handler", "recipe").Logger(),
	}
}

// =============================================================================
// Request/Response Structs
// =============================================================================

type createRecipeRequest struct {
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	CookingTime int                     `json:"cooking_time"`
	Image       string                  `json:"image"`
	Ingredients []domain.IngredientLine `json:"ingredients"`
}

type updateRecipeRequest struct {
	Name        *string                 `json:"name"`
	Text        *string                 `json:"text"`
	CookingTime *int                    `json:"cooking_time"`
	Image       *string                 `json:"image"`
	Ingredients []domain.IngredientLine `json:"ingredients"`
}

type ingredientLineResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               int64                    `json:"id"`
	Author           userResponse             `json:"author"`
	Ingredients      []ingredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
}

// recipeShortResponse is the compact recipe form used in subscription
// previews and relation confirmations.
type recipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type shortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func recipeShortFromDomain(recipe *domain.Recipe, mediaURLPrefix string) recipeShortResponse {
	return recipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       mediaURL(mediaURLPrefix, recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

func (h *RecipeHandler) viewToResponse(view *service.RecipeView) recipeResponse {
	lines := make([]ingredientLineResponse, 0, len(view.Ingredients))
	for _, line := range view.Ingredients {
		lines = append(lines, ingredientLineResponse{
			ID:              line.IngredientID,
			Name:            line.Name,
			MeasurementUnit: line.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return recipeResponse{
		ID: view.Recipe.ID,
		Author: userResponse{
			ID:        view.Author.ID,
			Email:     view.Author.Email,
			Username:  view.Author.Username,
			FirstName: view.Author.FirstName,
			LastName:  view.Author.LastName,
			Avatar:    mediaURL(h.mediaURLPrefix, view.Author.Avatar),
		},
		Ingredients:      lines,
		IsFavorited:      view.IsFavorited,
		IsInShoppingCart: view.IsInShoppingCart,
		Name:             view.Recipe.Name,
		Image:            mediaURL(h.mediaURLPrefix, view.Recipe.Image),
		Text:             view.Recipe.Text,
		CookingTime:      view.Recipe.CookingTime,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers recipe routes.
func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/recipes", h.handleQuery)
	r.Get("/api/recipes/{id}", h.handleGet)
	r.Get("/api/recipes/{id}/get-link", h.handleGetLink)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Post("/api/recipes", h.handleCreate)
		r.Patch("/api/recipes/{id}", h.handleUpdate)
		r.Delete("/api/recipes/{id}", h.handleDelete)
		r.Post("/api/recipes/{id}/favorite", h.handleAddRelation(domain.RelationFavorite))
		r.Delete("/api/recipes/{id}/favorite", h.handleRemoveRelation(domain.RelationFavorite))
		r.Post("/api/recipes/{id}/shopping_cart", h.handleAddRelation(domain.RelationShoppingCart))
		r.Delete("/api/recipes/{id}/shopping_cart", h.handleRemoveRelation(domain.RelationShoppingCart))
		r.Get("/api/recipes/download_shopping_cart", h.handleDownloadShoppingCart)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *RecipeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.recipeService.CreateRecipe(r.Context(), service.CreateRecipeInput{
		AuthorID:     auth.UserIDFromContext(r.Context()),
		Name:         req.Name,
		Text:         req.Text,
		CookingTime:  req.CookingTime,
		ImagePayload: req.Image,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.viewToResponse(view))
}

func (h *RecipeHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	var req updateRecipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	view, err := h.recipeService.UpdateRecipe(r.Context(), service.UpdateRecipeInput{
		RecipeID:     id,
		CallerID:     claims.UserID,
		CallerAdmin:  claims.IsAdmin,
		Name:         req.Name,
		Text:         req.Text,
		CookingTime:  req.CookingTime,
		ImagePayload: req.Image,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.viewToResponse(view))
}

func (h *RecipeHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	err := h.recipeService.DeleteRecipe(r.Context(), service.DeleteRecipeInput{
		RecipeID:    id,
		CallerID:    claims.UserID,
		CallerAdmin: claims.IsAdmin,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	view, err := h.recipeService.GetRecipe(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.viewToResponse(view))
}

func (h *RecipeHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, h.pagination)
	query := r.URL.Query()

	var authorID int64
	if raw := query.Get("author"); raw != "" {
		authorID, _ = strconv.ParseInt(raw, 10, 64)
	}

	out, err := h.recipeService.QueryRecipes(r.Context(), service.QueryRecipesInput{
		ViewerID:    auth.UserIDFromContext(r.Context()),
		AuthorID:    authorID,
		FavoritedBy: query.Get("is_favorited") == "1",
		InCartOf:    query.Get("is_in_shopping_cart") == "1",
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]recipeResponse, 0, len(out.Recipes))
	for _, view := range out.Recipes {
		results = append(results, h.viewToResponse(view))
	}

	writeJSON(w, http.StatusOK, pageResult{Count: out.Total, Results: results})
}

// handleAddRelation builds the POST handler for favorites and the
// shopping cart.
func (h *RecipeHandler) handleAddRelation(kind domain.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recipeID(w, r)
		if !ok {
			return
		}

		viewerID := auth.UserIDFromContext(r.Context())
		err := h.relationService.Add(r.Context(), domain.Relation{
			SubjectID: viewerID,
			ObjectID:  id,
			Kind:      kind,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		view, err := h.recipeService.GetRecipe(r.Context(), id, viewerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, recipeShortFromDomain(view.Recipe, h.mediaURLPrefix))
	}
}

// handleRemoveRelation builds the DELETE handler for favorites and the
// shopping cart.
func (h *RecipeHandler) handleRemoveRelation(kind domain.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recipeID(w, r)
		if !ok {
			return
		}

		err := h.relationService.Remove(r.Context(), domain.Relation{
			SubjectID: auth.UserIDFromContext(r.Context()),
			ObjectID:  id,
			Kind:      kind,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *RecipeHandler) handleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	text, err := h.shoppingListService.Build(r.Context(), auth.UserIDFromContext(r.Context()), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *RecipeHandler) handleGetLink(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	token, err := h.shortLinkService.CreateLink(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", h.baseURL, token),
	})
}

// recipeID parses the {id} route param, writing a 404 on garbage.
func recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "recipe not found"})
		return 0, false
	}
	return id, true
}
