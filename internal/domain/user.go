// Package domain contains the core business entities for Foodshare.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the recipe-sharing platform.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// usernamePattern restricts usernames to word characters plus ".@+-".
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User represents a registered user in the system.
// Users author recipes, favorite them, keep a shopping cart, and
// subscribe to other users.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Email is the unique email address for the user.
	// Constraints: max 254 characters.
	Email string `json:"email"`

	// Username is the unique username for login and display.
	// Constraints: max 150 characters, matching ^[\w.@+-]+$.
	Username string `json:"username"`

	// FirstName is the user's given name. Constraints: max 150 characters.
	FirstName string `json:"first_name"`

	// LastName is the user's family name. Constraints: max 150 characters.
	LastName string `json:"last_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Avatar is the media reference for the user's avatar image.
	// Empty when no avatar has been uploaded.
	Avatar string `json:"avatar,omitempty"`

	// IsActive indicates whether the user account is active.
	// Deactivated users cannot authenticate; their data is retained.
	IsActive bool `json:"is_active"`

	// IsAdmin indicates whether the user has administrative privileges.
	// Admins may edit and delete any recipe.
	IsAdmin bool `json:"is_admin"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
func NewUser(email, username, firstName, lastName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FullName returns the user's display name for reports and listings.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}

// ValidateUsername checks a username against length and pattern constraints.
func ValidateUsername(username string) error {
	if len(username) < 1 || len(username) > 150 {
		return ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
