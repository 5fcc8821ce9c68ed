// Package main is the entry point for the Foodshare API server.
// Foodshare is a recipe-sharing backend: recipes, ingredients,
// favorites, shopping carts, subscriptions, and shopping list export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/cache/memory"
	"github.com/foodshare-app/foodshare/internal/config"
	"github.com/foodshare-app/foodshare/internal/handler"
	"github.com/foodshare-app/foodshare/internal/media"
	"github.com/foodshare-app/foodshare/internal/repository"
	"github.com/foodshare-app/foodshare/internal/repository/postgres"
	redisrepo "github.com/foodshare-app/foodshare/internal/repository/redis"
	"github.com/foodshare-app/foodshare/internal/repository/sqlite"
	"github.com/foodshare-app/foodshare/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting foodshare server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// ------------------------------------------------------------------
	// Storage
	// ------------------------------------------------------------------
	repos, dbHealth, closeDB, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDB()

	if err := dbHealth.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	// ------------------------------------------------------------------
	// Cache
	// ------------------------------------------------------------------
	var cache repository.Cache
	if cfg.Redis.Enabled {
		redisCache, err := redisrepo.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		memCache := memory.NewCache()
		defer memCache.Stop()
		cache = memCache
	}

	// ------------------------------------------------------------------
	// Media store
	// ------------------------------------------------------------------
	mediaStore, err := openMediaStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}

	// ------------------------------------------------------------------
	// Services
	// ------------------------------------------------------------------
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	tokenMaker, err := auth.NewJWTMaker(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("create token maker: %w", err)
	}

	userService := service.NewUserService(repos.User, tokenMaker, mediaStore,
		cfg.Auth.BcryptCost, cfg.Media.MaxImageSize, logger)
	ingredientService := service.NewIngredientService(repos.Ingredient, cache,
		cfg.Redis.CatalogTTL, logger)
	recipeService := service.NewRecipeService(repos.Recipe, repos.Ingredient,
		repos.User, repos.Relation, mediaStore,
		cfg.Recipes.MergeDuplicateIngredients, cfg.Media.MaxImageSize, logger)
	relationService := service.NewRelationService(repos.Relation, repos.Recipe,
		repos.User, logger)
	shoppingListService := service.NewShoppingListService(repos.Relation,
		repos.Recipe, repos.User, logger)
	shortLinkService := service.NewShortLinkService(repos.Recipe, cache, logger)

	// ------------------------------------------------------------------
	// HTTP
	// ------------------------------------------------------------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var metrics *handler.Metrics
	if cfg.Metrics.Enabled {
		metrics = handler.NewMetrics(registry)
	}

	router := handler.NewRouter(handler.RouterConfig{
		UserHandler: handler.NewUserHandler(userService, relationService,
			cfg.Pagination, cfg.Media.URLPrefix, logger),
		IngredientHandler: handler.NewIngredientHandler(ingredientService, logger),
		RecipeHandler: handler.NewRecipeHandler(handler.RecipeHandlerConfig{
			RecipeService:       recipeService,
			RelationService:     relationService,
			ShoppingListService: shoppingListService,
			ShortLinkService:    shortLinkService,
			Pagination:          cfg.Pagination,
			MediaURLPrefix:      cfg.Media.URLPrefix,
			BaseURL:             strings.TrimSuffix(cfg.Server.BaseURL, "/"),
			Logger:              logger,
		}),
		ShortLinkHandler: handler.NewShortLinkHandler(shortLinkService, logger),
		MediaHandler:     handler.NewMediaHandler(mediaStore, cfg.Media.URLPrefix, logger),
		AuthMiddleware:   auth.Middleware(tokenMaker),
		Metrics:          metrics,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      http.MaxBytesHandler(router.Handler(), cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return nil
}

// openDatabase builds the repository bundle for the configured driver
// and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgres.NewRepositories(db), db, func() { db.Close() }, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqliteConfig(cfg.Database), logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewRepositories(db), db, func() { db.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func sqliteConfig(cfg config.DatabaseConfig) sqlite.Config {
	sc := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sc.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.BusyTimeout
	}
	if cfg.CacheSize != 0 {
		sc.CacheSize = cfg.CacheSize
	}
	if cfg.SynchronousMode != "" {
		sc.SynchronousMode = cfg.SynchronousMode
	}
	return sc
}

// openMediaStore builds the configured image store backend.
func openMediaStore(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Backend {
	case "s3":
		return media.NewS3Store(ctx, cfg.S3)
	case "filesystem":
		return media.NewFilesystemStore(cfg.DataDir)
	}
	return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat
	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
