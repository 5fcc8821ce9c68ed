package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// ShortLinkService maps recipes to compact share tokens and back.
// Tokens are reversible: the decimal recipe id is base64-encoded with
// the URL-safe alphabet and padding stripped, so no lookup table is
// needed to decode, only an existence check on resolve.
type ShortLinkService struct {
	recipeRepo repository.RecipeRepository
	cache      repository.Cache
	logger     zerolog.Logger
}

// NewShortLinkService creates a new ShortLinkService. cache may be
// nil; it is only used for resolution counters.
func NewShortLinkService(
	recipeRepo repository.RecipeRepository,
	cache repository.Cache,
	logger zerolog.Logger,
) *ShortLinkService {
	return &ShortLinkService{
		recipeRepo: recipeRepo,
		cache:      cache,
		logger:     logger.With().Str("service", "shortlink").Logger(),
	}
}

// Encode returns the share token for a recipe id.
func Encode(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// Decode parses a share token back to a recipe id. Tokens produced
// with standard padding are accepted too.
func Decode(token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrInvalidShortLink
	}

	data, err := base64.RawURLEncoding.DecodeString(trimPadding(token))
	if err != nil {
		return 0, domain.ErrInvalidShortLink
	}

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrInvalidShortLink
	}
	return id, nil
}

// trimPadding strips base64 padding so both raw and padded encodings
// of the same id decode identically.
func trimPadding(token string) string {
	for len(token) > 0 && token[len(token)-1] == '=' {
		token = token[:len(token)-1]
	}
	return token
}

// CreateLink issues the token for an existing recipe.
func (s *ShortLinkService) CreateLink(ctx context.Context, recipeID int64) (string, error) {
	exists, err := s.recipeRepo.Exists(ctx, recipeID)
	if err != nil {
		s.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to check recipe")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !exists {
		return "", domain.ErrRecipeNotFound
	}
	return Encode(recipeID), nil
}

// Resolve maps a token to the recipe id it names, verifying the recipe
// still exists. Resolution counts are tracked in the cache when one is
// configured.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (int64, error) {
	id, err := Decode(token)
	if err != nil {
		return 0, err
	}

	exists, err := s.recipeRepo.Exists(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("recipe_id", id).Msg("failed to check recipe")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !exists {
		return 0, domain.ErrRecipeNotFound
	}

	if s.cache != nil {
		if _, err := s.cache.Increment(ctx, "shortlink:hits:"+token, 1); err != nil {
			s.logger.Warn().Err(err).Str("token", token).Msg("failed to count resolution")
		}
	}

	return id, nil
}
