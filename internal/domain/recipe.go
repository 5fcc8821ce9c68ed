// Package domain contains the core business entities for Foodshare.
package domain

import (
	"strconv"
	"time"
)

// Recipe represents a published recipe. A recipe is owned exclusively
// by its author; only the author or an admin may modify or delete it.
type Recipe struct {
	// ID is the unique identifier for the recipe (auto-generated).
	ID int64 `json:"id"`

	// AuthorID references the user who created the recipe.
	AuthorID int64 `json:"author_id"`

	// Name is the recipe title. Constraints: max 256 characters;
	// (author_id, name) is unique.
	Name string `json:"name"`

	// Text is the cooking instructions.
	Text string `json:"text"`

	// CookingTime is the preparation time in minutes. Constraints: >= 1.
	CookingTime int `json:"cooking_time"`

	// Image is the media reference for the recipe picture. Required.
	Image string `json:"image"`

	// CreatedAt is the timestamp when the recipe was created.
	// Listings are ordered newest-first.
	CreatedAt time.Time `json:"created_at"`
}

// RecipeIngredient links a recipe to an ingredient with a per-recipe
// amount. The (recipe, ingredient) pair is unique; the full set is
// replaced wholesale when a recipe is updated.
type RecipeIngredient struct {
	RecipeID     int64 `json:"-"`
	IngredientID int64 `json:"id"`

	// Amount is the quantity in the ingredient's measurement unit.
	// Constraints: >= 1.
	Amount int `json:"amount"`

	// Denormalized ingredient fields, populated on reads.
	Name            string `json:"name,omitempty"`
	MeasurementUnit string `json:"measurement_unit,omitempty"`
}

// IngredientLine is one ingredient reference in a recipe submission.
type IngredientLine struct {
	IngredientID int64 `json:"id"`
	Amount       int   `json:"amount"`
}

// NewRecipe creates a Recipe with its creation timestamp set.
func NewRecipe(authorID int64, name, text string, cookingTime int, image string) *Recipe {
	return &Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        text,
		CookingTime: cookingTime,
		Image:       image,
		CreatedAt:   time.Now().UTC(),
	}
}

// ValidateRecipe checks the recipe's own field constraints.
func ValidateRecipe(name string, cookingTime int, image string) error {
	if name == "" || len(name) > 256 {
		return ErrInvalidRecipeName
	}
	if cookingTime < 1 {
		return ErrInvalidCookingTime
	}
	if image == "" {
		return ErrImageRequired
	}
	return nil
}

// NormalizeIngredientLines validates a submission's ingredient lines
// and resolves duplicate ingredient ids according to mergeDuplicates.
// When merging is enabled, amounts for repeated ids are summed and the
// line order of first occurrence is preserved; otherwise a repeated id
// is a validation error.
func NormalizeIngredientLines(lines []IngredientLine, mergeDuplicates bool) ([]IngredientLine, error) {
	if len(lines) == 0 {
		return nil, ErrNoIngredients
	}

	seen := make(map[int64]int, len(lines))
	out := make([]IngredientLine, 0, len(lines))
	for _, line := range lines {
		if line.Amount < 1 {
			return nil, ErrInvalidAmount
		}
		if idx, dup := seen[line.IngredientID]; dup {
			if !mergeDuplicates {
				return nil, NewDomainError(ErrDuplicateIngredient, "ingredient listed twice",
					strconv.FormatInt(line.IngredientID, 10))
			}
			out[idx].Amount += line.Amount
			continue
		}
		seen[line.IngredientID] = len(out)
		out = append(out, line)
	}
	return out, nil
}
