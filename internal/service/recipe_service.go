package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/media"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// RecipeService handles recipe creation, editing, and queries.
type RecipeService struct {
	recipeRepo      repository.RecipeRepository
	ingredientRepo  repository.IngredientRepository
	userRepo        repository.UserRepository
	relationRepo    repository.RelationRepository
	mediaStore      media.Store
	mergeDuplicates bool
	maxImageSize    int64
	logger          zerolog.Logger
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	userRepo repository.UserRepository,
	relationRepo repository.RelationRepository,
	mediaStore media.Store,
	mergeDuplicates bool,
	maxImageSize int64,
	logger zerolog.Logger,
) *RecipeService {
	return &RecipeService{
		recipeRepo:      recipeRepo,
		ingredientRepo:  ingredientRepo,
		userRepo:        userRepo,
		relationRepo:    relationRepo,
		mediaStore:      mediaStore,
		mergeDuplicates: mergeDuplicates,
		maxImageSize:    maxImageSize,
		logger:          logger.With().Str("service", "recipe").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// CreateRecipeInput contains the data needed to create a recipe.
type CreateRecipeInput struct {
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int

	// ImagePayload is a base64 data URI; required on create.
	ImagePayload string

	Ingredients []domain.IngredientLine
}

// UpdateRecipeInput contains the data needed to update a recipe.
// Pointer fields are applied only when non-nil; Ingredients replaces
// the full set when non-nil.
type UpdateRecipeInput struct {
	RecipeID int64

	// CallerID identifies the acting user for the ownership check.
	CallerID    int64
	CallerAdmin bool

	Name         *string
	Text         *string
	CookingTime  *int
	ImagePayload *string
	Ingredients  []domain.IngredientLine
}

// DeleteRecipeInput identifies the recipe and the acting user.
type DeleteRecipeInput struct {
	RecipeID    int64
	CallerID    int64
	CallerAdmin bool
}

// QueryRecipesInput narrows and paginates recipe queries. ViewerID
// identifies the user the IsFavorited/IsInShoppingCart annotations and
// the FavoritedBy/InCartOf filters apply to; zero means anonymous.
type QueryRecipesInput struct {
	ViewerID    int64
	AuthorID    int64
	FavoritedBy bool
	InCartOf    bool
	Limit       int
	Offset      int
}

// RecipeView is a recipe with its read-side annotations resolved.
type RecipeView struct {
	Recipe           *domain.Recipe
	Author           *domain.User
	Ingredients      []*domain.RecipeIngredient
	IsFavorited      bool
	IsInShoppingCart bool
}

// QueryRecipesOutput contains a page of annotated recipes.
type QueryRecipesOutput struct {
	Recipes []*RecipeView
	Total   int64
	Limit   int
	Offset  int
}

// =============================================================================
// Service Methods
// =============================================================================

// CreateRecipe validates and persists a new recipe with its image and
// ingredient set.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*RecipeView, error) {
	if input.ImagePayload == "" {
		return nil, domain.ErrImageRequired
	}

	lines, err := domain.NormalizeIngredientLines(input.Ingredients, s.mergeDuplicates)
	if err != nil {
		return nil, err
	}

	if err := s.checkIngredientsExist(ctx, lines); err != nil {
		return nil, err
	}

	img, err := media.DecodeDataURI(input.ImagePayload, s.maxImageSize)
	if err != nil {
		return nil, err
	}

	imageKey := media.NewObjectKey(img.ContentType)

	if err := domain.ValidateRecipe(input.Name, input.CookingTime, imageKey); err != nil {
		return nil, err
	}

	if err := s.mediaStore.Save(ctx, imageKey, img.ContentType, img.Data); err != nil {
		s.logger.Error().Err(err).Str("key", imageKey).Msg("failed to store recipe image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	recipe := domain.NewRecipe(input.AuthorID, input.Name, input.Text, input.CookingTime, imageKey)

	if err := s.recipeRepo.Create(ctx, recipe, lines); err != nil {
		_ = s.mediaStore.Delete(ctx, imageKey)
		switch {
		case errors.Is(err, domain.ErrRecipeAlreadyExists),
			errors.Is(err, domain.ErrIngredientNotFound),
			errors.Is(err, domain.ErrDuplicateIngredient):
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", input.Name).Msg("failed to create recipe")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("recipe_id", recipe.ID).
		Int64("author_id", input.AuthorID).
		Msg("recipe created")

	return s.GetRecipe(ctx, recipe.ID, input.AuthorID)
}

// UpdateRecipe applies a partial update. Only the author or an admin
// may update; a non-nil Ingredients replaces the full ingredient set.
func (s *RecipeService) UpdateRecipe(ctx context.Context, input UpdateRecipeInput) (*RecipeView, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, input.RecipeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		s.logger.Error().Err(err).Int64("recipe_id", input.RecipeID).Msg("failed to get recipe")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if recipe.AuthorID != input.CallerID && !input.CallerAdmin {
		return nil, domain.ErrNotRecipeAuthor
	}

	if input.Name != nil {
		recipe.Name = *input.Name
	}
	if input.Text != nil {
		recipe.Text = *input.Text
	}
	if input.CookingTime != nil {
		recipe.CookingTime = *input.CookingTime
	}

	var newImageKey, oldImageKey string
	if input.ImagePayload != nil {
		img, err := media.DecodeDataURI(*input.ImagePayload, s.maxImageSize)
		if err != nil {
			return nil, err
		}
		newImageKey = media.NewObjectKey(img.ContentType)
		if err := s.mediaStore.Save(ctx, newImageKey, img.ContentType, img.Data); err != nil {
			s.logger.Error().Err(err).Str("key", newImageKey).Msg("failed to store recipe image")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		oldImageKey = recipe.Image
		recipe.Image = newImageKey
	}

	if err := domain.ValidateRecipe(recipe.Name, recipe.CookingTime, recipe.Image); err != nil {
		if newImageKey != "" {
			_ = s.mediaStore.Delete(ctx, newImageKey)
		}
		return nil, err
	}

	var lines []domain.IngredientLine
	if input.Ingredients != nil {
		lines, err = domain.NormalizeIngredientLines(input.Ingredients, s.mergeDuplicates)
		if err != nil {
			if newImageKey != "" {
				_ = s.mediaStore.Delete(ctx, newImageKey)
			}
			return nil, err
		}
		if err := s.checkIngredientsExist(ctx, lines); err != nil {
			if newImageKey != "" {
				_ = s.mediaStore.Delete(ctx, newImageKey)
			}
			return nil, err
		}
	}

	if err := s.recipeRepo.Update(ctx, recipe, lines); err != nil {
		if newImageKey != "" {
			_ = s.mediaStore.Delete(ctx, newImageKey)
		}
		switch {
		case errors.Is(err, domain.ErrRecipeNotFound),
			errors.Is(err, domain.ErrRecipeAlreadyExists),
			errors.Is(err, domain.ErrIngredientNotFound),
			errors.Is(err, domain.ErrDuplicateIngredient):
			return nil, err
		}
		s.logger.Error().Err(err).Int64("recipe_id", recipe.ID).Msg("failed to update recipe")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if oldImageKey != "" {
		if err := s.mediaStore.Delete(ctx, oldImageKey); err != nil {
			s.logger.Warn().Err(err).Str("key", oldImageKey).Msg("failed to delete replaced image")
		}
	}

	s.logger.Info().Int64("recipe_id", recipe.ID).Msg("recipe updated")

	return s.GetRecipe(ctx, recipe.ID, input.CallerID)
}

// DeleteRecipe removes a recipe. Only the author or an admin may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, input DeleteRecipeInput) error {
	recipe, err := s.recipeRepo.GetByID(ctx, input.RecipeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return domain.ErrRecipeNotFound
		}
		s.logger.Error().Err(err).Int64("recipe_id", input.RecipeID).Msg("failed to get recipe")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if recipe.AuthorID != input.CallerID && !input.CallerAdmin {
		return domain.ErrNotRecipeAuthor
	}

	if err := s.recipeRepo.Delete(ctx, input.RecipeID); err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return domain.ErrRecipeNotFound
		}
		s.logger.Error().Err(err).Int64("recipe_id", input.RecipeID).Msg("failed to delete recipe")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if recipe.Image != "" {
		if err := s.mediaStore.Delete(ctx, recipe.Image); err != nil {
			s.logger.Warn().Err(err).Str("key", recipe.Image).Msg("failed to delete recipe image")
		}
	}

	s.logger.Info().Int64("recipe_id", input.RecipeID).Msg("recipe deleted")
	return nil
}

// GetRecipe retrieves a recipe with author, ingredients, and the
// viewer's annotations. viewerID zero means anonymous.
func (s *RecipeService) GetRecipe(ctx context.Context, id, viewerID int64) (*RecipeView, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		s.logger.Error().Err(err).Int64("recipe_id", id).Msg("failed to get recipe")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return s.buildView(ctx, recipe, viewerID)
}

// QueryRecipes returns a filtered, annotated, newest-first page.
// The FavoritedBy/InCartOf filters are ignored for anonymous viewers.
func (s *RecipeService) QueryRecipes(ctx context.Context, input QueryRecipesInput) (*QueryRecipesOutput, error) {
	filter := repository.RecipeFilter{AuthorID: input.AuthorID}
	if input.ViewerID > 0 {
		if input.FavoritedBy {
			filter.FavoritedBy = input.ViewerID
		}
		if input.InCartOf {
			filter.InCartOf = input.ViewerID
		}
	}

	result, err := s.recipeRepo.Query(ctx, filter, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query recipes")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	views := make([]*RecipeView, 0, len(result.Items))
	for _, recipe := range result.Items {
		view, err := s.buildView(ctx, recipe, input.ViewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return &QueryRecipesOutput{
		Recipes: views,
		Total:   result.Total,
		Limit:   result.Limit,
		Offset:  result.Offset,
	}, nil
}

// checkIngredientsExist verifies every referenced ingredient id.
func (s *RecipeService) checkIngredientsExist(ctx context.Context, lines []domain.IngredientLine) error {
	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.IngredientID
	}

	missing, ok, err := s.ingredientRepo.ExistAll(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check ingredient existence")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !ok {
		return domain.NewDomainError(domain.ErrIngredientNotFound, "unknown ingredient id",
			fmt.Sprintf("%d", missing))
	}
	return nil
}

// buildView assembles the full read model for one recipe.
func (s *RecipeService) buildView(ctx context.Context, recipe *domain.Recipe, viewerID int64) (*RecipeView, error) {
	author, err := s.userRepo.GetByID(ctx, recipe.AuthorID)
	if err != nil {
		s.logger.Error().Err(err).Int64("author_id", recipe.AuthorID).Msg("failed to get recipe author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	ingredients, err := s.recipeRepo.Ingredients(ctx, recipe.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("recipe_id", recipe.ID).Msg("failed to get recipe ingredients")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	view := &RecipeView{
		Recipe:      recipe,
		Author:      author,
		Ingredients: ingredients,
	}

	if viewerID > 0 {
		favorited, err := s.relationRepo.Exists(ctx, domain.Relation{
			SubjectID: viewerID, ObjectID: recipe.ID, Kind: domain.RelationFavorite,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		inCart, err := s.relationRepo.Exists(ctx, domain.Relation{
			SubjectID: viewerID, ObjectID: recipe.ID, Kind: domain.RelationShoppingCart,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		view.IsFavorited = favorited
		view.IsInShoppingCart = inCart
	}

	return view, nil
}
