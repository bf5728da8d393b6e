package api

import (
	"context"
	"net/http"

	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/scoring"
)

// ScoreDependencies scores attempts synchronously.
type ScoreDependencies interface {
	ScoreNow(ctx context.Context, target, attempt string) (scoring.Result, error)
}

// ScoreHandler handles score requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreRequest struct {
	Target  string `json:"target"`
	Attempt string `json:"attempt"`
}

type scoreResponse struct {
	Score     int               `json:"score"`
	Meter     string            `json:"meter"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

// HandlePostScore handles POST /score requests. Any pair of strings is
// scoreable, so only a malformed body is rejected.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.ScoreNow(r.Context(), req.Target, req.Attempt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		Score:     res.Score,
		Meter:     speech.Meter(res.Score),
		Breakdown: res.Breakdown,
	})
}
