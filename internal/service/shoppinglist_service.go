package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// ShoppingListService renders a user's shopping cart as an aggregated
// plain-text shopping list.
type ShoppingListService struct {
	relationRepo repository.RelationRepository
	recipeRepo   repository.RecipeRepository
	userRepo     repository.UserRepository
	logger       zerolog.Logger
}

// NewShoppingListService creates a new ShoppingListService.
func NewShoppingListService(
	relationRepo repository.RelationRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) *ShoppingListService {
	return &ShoppingListService{
		relationRepo: relationRepo,
		recipeRepo:   recipeRepo,
		userRepo:     userRepo,
		logger:       logger.With().Str("service", "shopping_list").Logger(),
	}
}

// aggregatedLine is one summed ingredient entry keyed by display name.
type aggregatedLine struct {
	name   string
	unit   string
	amount int
}

// Build renders the shopping list for the user's current cart.
//
// Amounts are summed per capitalized ingredient display name, not per
// ingredient id, so same-named ingredients with different units merge
// under the first occurrence's unit. Entries are sorted by name; the
// recipe listing keeps cart insertion order. An empty cart yields the
// header with no entries.
func (s *ShoppingListService) Build(ctx context.Context, userID int64, now time.Time) (string, error) {
	recipeIDs, err := s.relationRepo.ListObjects(ctx, domain.RelationShoppingCart, userID, repository.ListOptions{})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list cart")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	byName := make(map[string]*aggregatedLine)
	order := make([]string, 0)

	type cartRecipe struct {
		name   string
		author string
	}
	recipes := make([]cartRecipe, 0, len(recipeIDs))

	for _, recipeID := range recipeIDs {
		recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
		if err != nil {
			s.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to get cart recipe")
			return "", fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		author, err := s.userRepo.GetByID(ctx, recipe.AuthorID)
		if err != nil {
			s.logger.Error().Err(err).Int64("author_id", recipe.AuthorID).Msg("failed to get recipe author")
			return "", fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		recipes = append(recipes, cartRecipe{name: recipe.Name, author: author.FullName()})

		lines, err := s.recipeRepo.Ingredients(ctx, recipeID)
		if err != nil {
			s.logger.Error().Err(err).Int64("recipe_id", recipeID).Msg("failed to get recipe ingredients")
			return "", fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		for _, line := range lines {
			name := domain.Capitalize(line.Name)
			if agg, ok := byName[name]; ok {
				agg.amount += line.Amount
				continue
			}
			byName[name] = &aggregatedLine{
				name:   name,
				unit:   line.MeasurementUnit,
				amount: line.Amount,
			}
			order = append(order, name)
		}
	}

	sort.Strings(order)

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s:\n\n", now.Format("2006-01-02"))
	b.WriteString("Ingredients:\n")
	for i, name := range order {
		agg := byName[name]
		fmt.Fprintf(&b, "%d. %s: %d %s\n", i+1, agg.name, agg.amount, agg.unit)
	}
	b.WriteString("\nRecipes in cart:\n")
	for _, r := range recipes {
		fmt.Fprintf(&b, "- %s (author: %s)\n", r.name, r.author)
	}

	return b.String(), nil
}
