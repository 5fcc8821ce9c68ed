// Package domain contains the core business entities for Foodshare.
package domain

import "strings"

// Ingredient is static reference data describing a cooking ingredient
// and the unit its amounts are measured in. The (name, measurement
// unit) pair is unique; rows are created by bulk import and never
// mutated by normal request flow.
type Ingredient struct {
	// ID is the unique identifier for the ingredient (auto-generated).
	ID int64 `json:"id"`

	// Name is the ingredient name. Constraints: max 128 characters.
	Name string `json:"name"`

	// MeasurementUnit is the unit amounts are expressed in (e.g. "g").
	// Constraints: max 64 characters.
	MeasurementUnit string `json:"measurement_unit"`
}

// DisplayName returns the name with its first rune capitalized, the
// form used as the aggregation key in shopping lists.
func (i *Ingredient) DisplayName() string {
	return Capitalize(i.Name)
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// ValidateIngredient checks name and unit length constraints.
func ValidateIngredient(name, unit string) error {
	if name == "" || len(name) > 128 {
		return ErrInvalidIngredientName
	}
	if unit == "" || len(unit) > 64 {
		return ErrInvalidMeasurementUnit
	}
	return nil
}
