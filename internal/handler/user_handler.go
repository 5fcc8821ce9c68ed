package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/config"
	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/service"
)

// UserHandler handles user, auth, and subscription requests.
type UserHandler struct {
	userService     *service.UserService
	relationService *service.RelationService
	pagination      config.PaginationConfig
	mediaURLPrefix  string
	logger          zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	userService *service.UserService,
	relationService *service.RelationService,
	pagination config.PaginationConfig,
	mediaURLPrefix string,
	logger zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		relationService: relationService,
		pagination:      pagination,
		mediaURLPrefix:  mediaURLPrefix,
		logger:          logger.With().Str("handler", "user").Logger(),
	}
}

// =============================================================================
// Request/Response Structs
// =============================================================================

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type setAvatarRequest struct {
	Avatar string `json:"avatar"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar,omitempty"`
}

type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func (h *UserHandler) userToResponse(user *domain.User, isSubscribed bool) userResponse {
	return userResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       mediaURL(h.mediaURLPrefix, user.Avatar),
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers user and auth routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/token/login", h.handleLogin)
	r.Post("/api/users", h.handleRegister)
	r.Get("/api/users", h.handleList)
	r.Get("/api/users/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/api/users/me", h.handleMe)
		r.Post("/api/users/set_password", h.handleSetPassword)
		r.Put("/api/users/me/avatar", h.handleSetAvatar)
		r.Delete("/api/users/me/avatar", h.handleDeleteAvatar)
		r.Get("/api/users/subscriptions", h.handleSubscriptions)
		r.Post("/api/users/{id}/subscribe", h.handleSubscribe)
		r.Delete("/api/users/{id}/subscribe", h.handleUnsubscribe)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.userToResponse(out.User, false))
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := h.userService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AuthToken: out.Token})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, h.pagination)

	out, err := h.userService.ListUsers(r.Context(), service.ListUsersInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	viewerID := auth.UserIDFromContext(r.Context())
	results := make([]userResponse, 0, len(out.Users))
	for _, user := range out.Users {
		subscribed, err := h.isSubscribed(r, viewerID, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		results = append(results, h.userToResponse(user, subscribed))
	}

	writeJSON(w, http.StatusOK, pageResult{Count: out.Total, Results: results})
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	subscribed, err := h.isSubscribed(r, auth.UserIDFromContext(r.Context()), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.userToResponse(user, subscribed))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.userToResponse(user, false))
}

func (h *UserHandler) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	err := h.userService.ChangePassword(r.Context(), service.ChangePasswordInput{
		UserID:          auth.UserIDFromContext(r.Context()),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleSetAvatar(w http.ResponseWriter, r *http.Request) {
	var req setAvatarRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := h.userService.SetAvatar(r.Context(), service.SetAvatarInput{
		UserID:  auth.UserIDFromContext(r.Context()),
		Payload: req.Avatar,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, setAvatarRequest{Avatar: mediaURL(h.mediaURLPrefix, out.Avatar)})
}

func (h *UserHandler) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAvatar(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("recipes_limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	pageLimit, pageOffset := parsePage(r, h.pagination)
	views, total, err := h.relationService.ListSubscriptions(r.Context(), service.ListSubscriptionsInput{
		SubscriberID: auth.UserIDFromContext(r.Context()),
		RecipesLimit: limit,
		Limit:        pageLimit,
		Offset:       pageOffset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	results := make([]subscriptionResponse, 0, len(views))
	for _, view := range views {
		results = append(results, h.subscriptionToResponse(view))
	}

	writeJSON(w, http.StatusOK, pageResult{Count: total, Results: results})
}

func (h *UserHandler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	publisherID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	subscriberID := auth.UserIDFromContext(r.Context())
	err = h.relationService.Add(r.Context(), domain.Relation{
		SubjectID: subscriberID,
		ObjectID:  publisherID,
		Kind:      domain.RelationSubscription,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	views, _, err := h.relationService.ListSubscriptions(r.Context(), service.ListSubscriptionsInput{
		SubscriberID: subscriberID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	for _, view := range views {
		if view.Publisher.ID == publisherID {
			writeJSON(w, http.StatusCreated, h.subscriptionToResponse(view))
			return
		}
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *UserHandler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	publisherID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	err = h.relationService.Remove(r.Context(), domain.Relation{
		SubjectID: auth.UserIDFromContext(r.Context()),
		ObjectID:  publisherID,
		Kind:      domain.RelationSubscription,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *UserHandler) subscriptionToResponse(view *service.SubscriptionView) subscriptionResponse {
	recipes := make([]recipeShortResponse, 0, len(view.Recipes))
	for _, recipe := range view.Recipes {
		recipes = append(recipes, recipeShortFromDomain(recipe, h.mediaURLPrefix))
	}
	return subscriptionResponse{
		userResponse: h.userToResponse(view.Publisher, true),
		Recipes:      recipes,
		RecipesCount: view.RecipesCount,
	}
}

// isSubscribed checks the viewer's subscription to the given user.
// Anonymous viewers and self-views are never subscribed.
func (h *UserHandler) isSubscribed(r *http.Request, viewerID, userID int64) (bool, error) {
	if viewerID == 0 || viewerID == userID {
		return false, nil
	}
	return h.relationService.Exists(r.Context(), domain.Relation{
		SubjectID: viewerID,
		ObjectID:  userID,
		Kind:      domain.RelationSubscription,
	})
}

// mediaURL prepends the public media prefix to a stored object key.
func mediaURL(prefix, key string) string {
	if key == "" {
		return ""
	}
	return prefix + key
}
