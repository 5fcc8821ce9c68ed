// Package repository defines data access interfaces for Foodshare.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/foodshare-app/foodshare/internal/domain"
)

// ListOptions contains pagination options for list operations.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListResult contains a page of items and the total count.
type ListResult[T any] struct {
	Items  []*T
	Total  int64
	Offset int
	Limit  int
}

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID. Relation rows referencing the user
	// are cascade-deleted by the storage layer.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination, ordered by email.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Ingredient Repository
// =============================================================================

// IngredientRepository defines the interface for ingredient catalog access.
type IngredientRepository interface {
	// GetByID retrieves an ingredient by ID.
	GetByID(ctx context.Context, id int64) (*domain.Ingredient, error)

	// List returns ingredients whose name starts with namePrefix
	// (case-insensitive), ordered by name. An empty prefix returns the
	// full catalog.
	List(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error)

	// BulkImport inserts the given records, skipping any whose
	// (name, measurement_unit) pair is already present in the table or
	// earlier in the batch. Returns the number of rows inserted.
	BulkImport(ctx context.Context, records []*domain.Ingredient) (int64, error)

	// ExistAll checks that every ingredient id in ids is present.
	// Returns the first missing id when any is absent.
	ExistAll(ctx context.Context, ids []int64) (missing int64, ok bool, err error)
}

// =============================================================================
// Recipe Repository
// =============================================================================

// RecipeFilter narrows recipe queries. Zero-valued fields are ignored;
// set fields compose with logical AND.
type RecipeFilter struct {
	// AuthorID restricts to recipes by this author.
	AuthorID int64

	// FavoritedBy restricts to recipes favorited by this user.
	FavoritedBy int64

	// InCartOf restricts to recipes in this user's shopping cart.
	InCartOf int64
}

// RecipeRepository defines the interface for recipe data access.
type RecipeRepository interface {
	// Create persists the recipe row and its ingredient rows as a
	// single atomic unit. The recipe's ID is set on success.
	Create(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error

	// Update updates the recipe row; when lines is non-nil the full
	// ingredient set is replaced (clear-then-insert) in the same
	// transaction.
	Update(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error

	// GetByID retrieves a recipe by ID.
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)

	// Delete deletes a recipe. Ingredient rows and relation rows
	// referencing it are cascade-deleted by the storage layer.
	Delete(ctx context.Context, id int64) error

	// Ingredients returns the recipe's ingredient rows with
	// denormalized name and unit, ordered by ingredient name.
	Ingredients(ctx context.Context, recipeID int64) ([]*domain.RecipeIngredient, error)

	// Query returns recipes matching the filter, newest-first.
	Query(ctx context.Context, filter RecipeFilter, opts ListOptions) (*ListResult[domain.Recipe], error)

	// ListByAuthor returns the author's recipes newest-first, truncated
	// to limit when limit > 0, plus the author's total recipe count.
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*domain.Recipe, int64, error)

	// Exists checks if a recipe with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

// =============================================================================
// Relation Repository
// =============================================================================

// RelationRepository defines the interface for the three relation sets
// (favorites, shopping cart, subscriptions). Uniqueness of the
// (subject, object) pair per kind is enforced by the storage layer, so
// a race between two concurrent Add calls yields exactly one success.
type RelationRepository interface {
	// Add inserts the pair. Returns the kind's conflict sentinel when
	// the pair is already present.
	Add(ctx context.Context, rel domain.Relation) error

	// Remove deletes the pair. Returns the kind's not-found sentinel
	// when no such pair exists.
	Remove(ctx context.Context, rel domain.Relation) error

	// Exists checks if the pair is present.
	Exists(ctx context.Context, rel domain.Relation) (bool, error)

	// ListObjects returns the object ids linked to the subject, in
	// insertion order. A zero Limit returns the full set.
	ListObjects(ctx context.Context, kind domain.RelationKind, subjectID int64, opts ListOptions) ([]int64, error)

	// Count returns the number of pairs with the given subject,
	// independent of any ListObjects pagination.
	Count(ctx context.Context, kind domain.RelationKind, subjectID int64) (int64, error)
}
