package transport

import (
	"net/http"
	"strconv"

	"bloomcart/internal/middleware"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	userPageLimit   = 50
	adminPageLimit  = 100
)

// Pagination is the page descriptor attached to list responses
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// paginationParams reads page/limit query params and clamps them server-side
func paginationParams(r *http.Request, maxLimit int) (page, limit int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 1 {
			page = parsed
		}
	}

	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

// requesterID returns the authenticated user's ID from the request context
func requesterID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isAdmin(r *http.Request) bool {
	role, ok := middleware.GetUserRole(r.Context())
	return ok && role == "admin"
}

// pathID parses a UUID path parameter, responding 400 on garbage
func pathID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
