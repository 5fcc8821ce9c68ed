package postgres

import "github.com/foodshare-app/foodshare/internal/repository"

// NewRepositories bundles all PostgreSQL repositories over one pool.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Ingredient: NewIngredientRepository(db),
		Recipe:     NewRecipeRepository(db),
		Relation:   NewRelationRepository(db),
	}
}
