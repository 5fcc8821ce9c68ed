// Package handler provides HTTP handlers for the Foodshare API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/media"
	"github.com/foodshare-app/foodshare/internal/service"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a service error onto an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor resolves the HTTP status for a domain or service error.
// Unrecognized errors are treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrNotFavorited),
		errors.Is(err, domain.ErrNotInCart),
		errors.Is(err, domain.ErrNotSubscribed),
		errors.Is(err, domain.ErrRelationNotFound),
		errors.Is(err, domain.ErrInvalidShortLink):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrNotRecipeAuthor):
		return http.StatusForbidden

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrRecipeAlreadyExists),
		errors.Is(err, domain.ErrAlreadyFavorited),
		errors.Is(err, domain.ErrAlreadyInCart),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidRecipeName),
		errors.Is(err, domain.ErrInvalidCookingTime),
		errors.Is(err, domain.ErrImageRequired),
		errors.Is(err, domain.ErrNoIngredients),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrDuplicateIngredient),
		errors.Is(err, domain.ErrInvalidIngredientName),
		errors.Is(err, domain.ErrInvalidMeasurementUnit),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, media.ErrInvalidImage),
		errors.Is(err, media.ErrImageTooLarge):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
