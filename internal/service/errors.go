// Package service provides business logic services for Foodshare.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password: must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email format")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
