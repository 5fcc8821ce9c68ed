// Package domain contains the core business entities for Foodshare.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username/email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserInactive indicates the user account is disabled.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUsername indicates the username length or pattern is invalid.
	ErrInvalidUsername = errors.New("username must be 1-150 characters of letters, digits, or .@+-")

	// ===========================================
	// Ingredient Errors
	// ===========================================

	// ErrIngredientNotFound indicates the referenced ingredient does not exist.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrIngredientExists indicates the (name, unit) pair is already present.
	ErrIngredientExists = errors.New("ingredient already exists")

	// ErrInvalidIngredientName indicates the ingredient name is empty or too long.
	ErrInvalidIngredientName = errors.New("ingredient name must be 1-128 characters")

	// ErrInvalidMeasurementUnit indicates the measurement unit is empty or too long.
	ErrInvalidMeasurementUnit = errors.New("measurement unit must be 1-64 characters")

	// ===========================================
	// Recipe Errors
	// ===========================================

	// ErrRecipeNotFound indicates the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrRecipeAlreadyExists indicates the author already has a recipe with this name.
	ErrRecipeAlreadyExists = errors.New("recipe with this name already exists for author")

	// ErrNotRecipeAuthor indicates the caller does not own the recipe.
	ErrNotRecipeAuthor = errors.New("caller is not the recipe author")

	// ErrInvalidRecipeName indicates the recipe name is empty or too long.
	ErrInvalidRecipeName = errors.New("recipe name must be 1-256 characters")

	// ErrInvalidCookingTime indicates the cooking time is below one minute.
	ErrInvalidCookingTime = errors.New("cooking time must be at least 1 minute")

	// ErrImageRequired indicates the recipe image is missing or empty.
	ErrImageRequired = errors.New("recipe image is required")

	// ErrNoIngredients indicates the submission carries no ingredient lines.
	ErrNoIngredients = errors.New("recipe must list at least one ingredient")

	// ErrInvalidAmount indicates an ingredient amount below one.
	ErrInvalidAmount = errors.New("ingredient amount must be at least 1")

	// ErrDuplicateIngredient indicates the same ingredient id appears twice
	// in one submission while duplicate merging is disabled.
	ErrDuplicateIngredient = errors.New("duplicate ingredient in submission")

	// ===========================================
	// Relation Errors
	// ===========================================

	// ErrRelationExists indicates the (subject, object) pair is already present.
	ErrRelationExists = errors.New("relation already exists")

	// ErrRelationNotFound indicates no such (subject, object) pair exists.
	ErrRelationNotFound = errors.New("relation not found")

	// ErrAlreadyFavorited indicates the recipe is already in the user's favorites.
	ErrAlreadyFavorited = errors.New("recipe is already favorited")

	// ErrNotFavorited indicates the recipe is not in the user's favorites.
	ErrNotFavorited = errors.New("recipe is not favorited")

	// ErrAlreadyInCart indicates the recipe is already in the shopping cart.
	ErrAlreadyInCart = errors.New("recipe is already in the shopping cart")

	// ErrNotInCart indicates the recipe is not in the shopping cart.
	ErrNotInCart = errors.New("recipe is not in the shopping cart")

	// ErrAlreadySubscribed indicates the subscription already exists.
	ErrAlreadySubscribed = errors.New("already subscribed to this user")

	// ErrNotSubscribed indicates no such subscription exists.
	ErrNotSubscribed = errors.New("not subscribed to this user")

	// ErrSelfSubscription indicates a user attempted to subscribe to themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")

	// ===========================================
	// Short Link Errors
	// ===========================================

	// ErrInvalidShortLink indicates the short-link token is malformed.
	ErrInvalidShortLink = errors.New("invalid short link")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., recipe id, username).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
