package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/nbaelo/internal/adapters/export"
)

// RatingsDependencies defines the read side of the rating table.
type RatingsDependencies interface {
	Ratings(ctx context.Context) ([]Entry, error)
	Rating(ctx context.Context, team string) (Entry, error)
}

// RatingsHandler serves the rating table.
type RatingsHandler struct {
	deps RatingsDependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps RatingsDependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

// HandleList handles GET /ratings?limit=N. Without limit every team is
// returned.
func (h *RatingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.deps.Ratings(r.Context())
	if err != nil {
		writeQueryError(w, err)
		return
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /ratings/{team}.
func (h *RatingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	team := strings.TrimSpace(chi.URLParam(r, "team"))
	if team == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry, err := h.deps.Rating(r.Context(), team)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleExport handles GET /ratings/export.xlsx.
func (h *RatingsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.Ratings(r.Context())
	if err != nil {
		writeQueryError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ratings.xlsx"`)
	if err := export.WriteRatings(w, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
