package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Router assembles the HTTP handler tree for the Foodshare API.
type Router struct {
	userHandler       *UserHandler
	ingredientHandler *IngredientHandler
	recipeHandler     *RecipeHandler
	shortLinkHandler  *ShortLinkHandler
	mediaHandler      *MediaHandler
	authMiddleware    func(http.Handler) http.Handler
	metrics           *Metrics
	logger            zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	UserHandler       *UserHandler
	IngredientHandler *IngredientHandler
	RecipeHandler     *RecipeHandler
	ShortLinkHandler  *ShortLinkHandler
	MediaHandler      *MediaHandler
	AuthMiddleware    func(http.Handler) http.Handler
	Metrics           *Metrics
	Logger            zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		userHandler:       cfg.UserHandler,
		ingredientHandler: cfg.IngredientHandler,
		recipeHandler:     cfg.RecipeHandler,
		shortLinkHandler:  cfg.ShortLinkHandler,
		mediaHandler:      cfg.MediaHandler,
		authMiddleware:    cfg.AuthMiddleware,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the root HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(RequestLogger(rt.logger))
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}
	r.Use(rt.authMiddleware)

	r.Get("/health", rt.handleHealth)

	rt.userHandler.RegisterRoutes(r)
	rt.ingredientHandler.RegisterRoutes(r)
	rt.recipeHandler.RegisterRoutes(r)
	rt.shortLinkHandler.RegisterRoutes(r)
	if rt.mediaHandler != nil {
		rt.mediaHandler.RegisterRoutes(r)
	}

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
