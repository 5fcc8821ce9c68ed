package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// RelationService manages the three relation sets: favorites, the
// shopping cart, and subscriptions. The storage unique constraint is
// the arbiter under concurrency; the service adds the object existence
// checks and the self-subscription rule.
type RelationService struct {
	relationRepo repository.RelationRepository
	recipeRepo   repository.RecipeRepository
	userRepo     repository.UserRepository
	logger       zerolog.Logger
}

// NewRelationService creates a new RelationService.
func NewRelationService(
	relationRepo repository.RelationRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) *RelationService {
	return &RelationService{
		relationRepo: relationRepo,
		recipeRepo:   recipeRepo,
		userRepo:     userRepo,
		logger:       logger.With().Str("service", "relation").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// SubscriptionView is one subscribed publisher with a preview of their
// recipes.
type SubscriptionView struct {
	Publisher *domain.User

	// Recipes holds the publisher's newest recipes, truncated to the
	// requested limit.
	Recipes []*domain.Recipe

	// RecipesCount is the publisher's total recipe count, independent
	// of the truncation.
	RecipesCount int64
}

// ListSubscriptionsInput selects a subscriber and an optional preview
// size. RecipesLimit zero means no truncation.
type ListSubscriptionsInput struct {
	SubscriberID int64
	RecipesLimit int

	// Limit/Offset paginate the publisher list. Zero Limit returns all.
	Limit  int
	Offset int
}

// =============================================================================
// Service Methods
// =============================================================================

// Add creates the relation after verifying both endpoints exist.
// Returns the kind's conflict sentinel when the pair is already
// present, and ErrSelfSubscription for a self-directed subscription.
func (s *RelationService) Add(ctx context.Context, rel domain.Relation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("unknown relation kind %q", rel.Kind)
	}
	if rel.Kind == domain.RelationSubscription && rel.SubjectID == rel.ObjectID {
		return domain.ErrSelfSubscription
	}

	if err := s.checkObjectExists(ctx, rel); err != nil {
		return err
	}

	if err := s.relationRepo.Add(ctx, rel); err != nil {
		if errors.Is(err, rel.Kind.AlreadyExistsError()) {
			return err
		}
		if errors.Is(err, repository.ErrNotFound) {
			// FK violation: an endpoint vanished between check and insert.
			return s.objectNotFoundError(rel.Kind)
		}
		s.logger.Error().Err(err).
			Str("kind", string(rel.Kind)).
			Int64("subject_id", rel.SubjectID).
			Int64("object_id", rel.ObjectID).
			Msg("failed to add relation")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("kind", string(rel.Kind)).
		Int64("subject_id", rel.SubjectID).
		Int64("object_id", rel.ObjectID).
		Msg("relation added")
	return nil
}

// Remove deletes the relation. The object must exist; removing a
// missing pair yields the kind's not-found sentinel.
func (s *RelationService) Remove(ctx context.Context, rel domain.Relation) error {
	if !rel.Kind.Valid() {
		return fmt.Errorf("unknown relation kind %q", rel.Kind)
	}

	if err := s.checkObjectExists(ctx, rel); err != nil {
		return err
	}

	if err := s.relationRepo.Remove(ctx, rel); err != nil {
		if errors.Is(err, rel.Kind.NotFoundError()) {
			return err
		}
		s.logger.Error().Err(err).
			Str("kind", string(rel.Kind)).
			Int64("subject_id", rel.SubjectID).
			Int64("object_id", rel.ObjectID).
			Msg("failed to remove relation")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("kind", string(rel.Kind)).
		Int64("subject_id", rel.SubjectID).
		Int64("object_id", rel.ObjectID).
		Msg("relation removed")
	return nil
}

// Exists reports whether the relation pair is present.
func (s *RelationService) Exists(ctx context.Context, rel domain.Relation) (bool, error) {
	exists, err := s.relationRepo.Exists(ctx, rel)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return exists, nil
}

// ListSubscriptions returns one page of the subscriber's publishers in
// subscription order, each with a recipe preview and total count. The
// second return value is the subscriber's total subscription count,
// independent of the page.
func (s *RelationService) ListSubscriptions(ctx context.Context, input ListSubscriptionsInput) ([]*SubscriptionView, int64, error) {
	publisherIDs, err := s.relationRepo.ListObjects(ctx, domain.RelationSubscription, input.SubscriberID,
		repository.ListOptions{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		s.logger.Error().Err(err).Int64("subscriber_id", input.SubscriberID).Msg("failed to list subscriptions")
		return nil, 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	total, err := s.relationRepo.Count(ctx, domain.RelationSubscription, input.SubscriberID)
	if err != nil {
		s.logger.Error().Err(err).Int64("subscriber_id", input.SubscriberID).Msg("failed to count subscriptions")
		return nil, 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	views := make([]*SubscriptionView, 0, len(publisherIDs))
	for _, publisherID := range publisherIDs {
		publisher, err := s.userRepo.GetByID(ctx, publisherID)
		if err != nil {
			s.logger.Error().Err(err).Int64("publisher_id", publisherID).Msg("failed to get publisher")
			return nil, 0, fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		recipes, recipeTotal, err := s.recipeRepo.ListByAuthor(ctx, publisherID, input.RecipesLimit)
		if err != nil {
			s.logger.Error().Err(err).Int64("publisher_id", publisherID).Msg("failed to list publisher recipes")
			return nil, 0, fmt.Errorf("%w: %v", ErrInternalError, err)
		}

		views = append(views, &SubscriptionView{
			Publisher:    publisher,
			Recipes:      recipes,
			RecipesCount: recipeTotal,
		})
	}

	return views, total, nil
}

// checkObjectExists resolves the relation object (recipe or user) and
// reports the matching not-found sentinel when it is absent.
func (s *RelationService) checkObjectExists(ctx context.Context, rel domain.Relation) error {
	if rel.Kind.UserToUser() {
		if _, err := s.userRepo.GetByID(ctx, rel.ObjectID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		return nil
	}

	exists, err := s.recipeRepo.Exists(ctx, rel.ObjectID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !exists {
		return domain.ErrRecipeNotFound
	}
	return nil
}

func (s *RelationService) objectNotFoundError(kind domain.RelationKind) error {
	if kind.UserToUser() {
		return domain.ErrUserNotFound
	}
	return domain.ErrRecipeNotFound
}
