// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/hiscores/internal/domain/types"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, name string, key types.SortKey) (Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{name}?sort=K requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /rank/; r.URL.Path is already unescaped.
	name := strings.TrimPrefix(r.URL.Path, "/rank/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	key, ok := types.ParseSortKey(r.URL.Query().Get("sort"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKindf(op, ErrBadRequest, "unknown sort %q", r.URL.Query().Get("sort")))
		return
	}
	entry, err := h.deps.Rank(r.Context(), name, key)
	if err != nil {
		// If upstream exposes not-found, translate; otherwise 500
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
