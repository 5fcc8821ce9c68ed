package sqlite

import "github.com/foodshare-app/foodshare/internal/repository"

// NewRepositories bundles all SQLite repositories over one connection.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Ingredient: NewIngredientRepository(db),
		Recipe:     NewRecipeRepository(db),
		Relation:   NewRelationRepository(db),
	}
}
