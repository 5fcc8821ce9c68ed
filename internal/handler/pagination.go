package handler

import (
	"net/http"
	"strconv"

	"github.com/foodshare-app/foodshare/internal/config"
)

// pageResult is the envelope for paginated listings.
type pageResult struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

// parsePage maps the page/limit query params to a limit/offset pair.
// Out-of-range values fall back to the configured defaults.
func parsePage(r *http.Request, cfg config.PaginationConfig) (limit, offset int) {
	limit = cfg.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > cfg.MaxPageSize {
		limit = cfg.MaxPageSize
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return limit, (page - 1) * limit
}
