package api

import (
	"context"
	"net/http"

	"github.com/okian/hiscores/internal/domain/model"
)

// HiscoresDependencies defines the interface for snapshot reads.
type HiscoresDependencies interface {
	Snapshot(ctx context.Context) []model.Record
}

// HiscoresHandler serves the latest snapshot in the file's JSON shape.
type HiscoresHandler struct {
	deps HiscoresDependencies
}

// NewHiscoresHandler creates a new hiscores handler.
func NewHiscoresHandler(deps HiscoresDependencies) *HiscoresHandler {
	return &HiscoresHandler{deps: deps}
}

// HandleGetHiscores handles GET /hiscores requests.
func (h *HiscoresHandler) HandleGetHiscores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records := h.deps.Snapshot(r.Context())
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
