package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

const (
	// catalogCacheKey prefixes cache keys for ingredient catalog pages.
	// The catalog version is part of every key, so bumping the version
	// on import invalidates all cached pages at once.
	catalogCacheKey = "ingredients:list:"

	// catalogVersionCacheKey holds the catalog version counter.
	catalogVersionCacheKey = "ingredients:catalog:version"
)

// IngredientService handles the ingredient reference catalog.
type IngredientService struct {
	ingredientRepo repository.IngredientRepository
	cache          repository.Cache
	cacheTTL       time.Duration
	logger         zerolog.Logger
}

// NewIngredientService creates a new IngredientService. cache may be
// nil, in which case every read hits the repository.
func NewIngredientService(
	ingredientRepo repository.IngredientRepository,
	cache repository.Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *IngredientService {
	return &IngredientService{
		ingredientRepo: ingredientRepo,
		cache:          cache,
		cacheTTL:       cacheTTL,
		logger:         logger.With().Str("service", "ingredient").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// ImportIngredientsInput contains the records for a bulk import.
type ImportIngredientsInput struct {
	Records []*domain.Ingredient
}

// ImportIngredientsOutput contains the result of a bulk import.
type ImportIngredientsOutput struct {
	Inserted int64
	Skipped  int64
}

// =============================================================================
// Service Methods
// =============================================================================

// List returns ingredients whose name starts with namePrefix
// (case-insensitive), ordered by name. Results are served through the
// cache when one is configured; the catalog changes only on import, so
// short TTL staleness is acceptable.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error) {
	var key string

	if s.cache != nil {
		key = s.catalogKey(ctx, namePrefix)
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached []*domain.Ingredient
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			// Corrupt entry, fall through to the repository.
			_ = s.cache.Delete(ctx, key)
		}
	}

	ingredients, err := s.ingredientRepo.List(ctx, namePrefix)
	if err != nil {
		s.logger.Error().Err(err).Str("prefix", namePrefix).Msg("failed to list ingredients")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(ingredients); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache ingredient catalog")
			}
		}
	}

	return ingredients, nil
}

// catalogKey builds the versioned cache key for one catalog page. A
// zero-delta increment reads the current version, creating it at zero
// on first use.
func (s *IngredientService) catalogKey(ctx context.Context, namePrefix string) string {
	version, err := s.cache.Increment(ctx, catalogVersionCacheKey, 0)
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("%s%d:%s", catalogCacheKey, version, namePrefix)
}

// Get retrieves an ingredient by id.
func (s *IngredientService) Get(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.ingredientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIngredientNotFound) {
			return nil, domain.ErrIngredientNotFound
		}
		s.logger.Error().Err(err).Int64("ingredient_id", id).Msg("failed to get ingredient")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return ing, nil
}

// Import bulk-loads catalog records, skipping pairs already present.
// Invalid records fail the whole batch before anything is written.
func (s *IngredientService) Import(ctx context.Context, input ImportIngredientsInput) (*ImportIngredientsOutput, error) {
	for _, rec := range input.Records {
		if err := domain.ValidateIngredient(rec.Name, rec.MeasurementUnit); err != nil {
			return nil, err
		}
	}

	inserted, err := s.ingredientRepo.BulkImport(ctx, input.Records)
	if err != nil {
		s.logger.Error().Err(err).Int("records", len(input.Records)).Msg("failed to import ingredients")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.cache != nil {
		// Bumping the version orphans every cached catalog page,
		// including prefix-filtered ones; orphans expire via TTL.
		if _, err := s.cache.Increment(ctx, catalogVersionCacheKey, 1); err != nil {
			s.logger.Warn().Err(err).Msg("failed to bump catalog cache version")
		}
	}

	s.logger.Info().
		Int("records", len(input.Records)).
		Int64("inserted", inserted).
		Msg("ingredient import finished")

	return &ImportIngredientsOutput{
		Inserted: inserted,
		Skipped:  int64(len(input.Records)) - inserted,
	}, nil
}
