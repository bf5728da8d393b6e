package api

import (
	"context"
	"net/http"

	"github.com/okian/voicepartner/internal/domain/progress"
)

// ProgressDependencies exposes the learner's progress.
type ProgressDependencies interface {
	Progress(ctx context.Context) progress.Snapshot
}

// ProgressHandler handles progress requests.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleGetProgress handles GET /progress requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Progress(r.Context()))
}
