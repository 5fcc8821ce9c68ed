// Package repository provides the data access layer for Foodshare.
// This file contains the repository bundle wired up by the entry points
// based on the configured database driver.
package repository

import "context"

// Repositories holds all repository instances.
type Repositories struct {
	User       UserRepository
	Ingredient IngredientRepository
	Recipe     RecipeRepository
	Relation   RelationRepository
}

// DatabaseHealth is an interface for database health checks.
// This interface satisfies handler.DatabaseChecker for health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
