package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/voicepartner/internal/adapters/mq/queue"
	"github.com/okian/voicepartner/internal/domain/dedupe"
	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/internal/domain/scoring"
)

// AttemptDependencies defines the interface for attempt submission.
type AttemptDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, a model.Attempt) error
}

// AttemptsHandler handles attempt submissions.
type AttemptsHandler struct {
	deps AttemptDependencies
}

// NewAttemptsHandler creates a new attempts handler.
func NewAttemptsHandler(deps AttemptDependencies) *AttemptsHandler {
	return &AttemptsHandler{deps: deps}
}

// attemptRequest is the body of POST /attempts. Only target is required.
type attemptRequest struct {
	AttemptID  string `json:"attempt_id"`
	LineID     string `json:"line_id"`
	Target     string `json:"target"`
	Transcript string `json:"transcript"`
	Locale     string `json:"locale"`
	TS         string `json:"ts"`
}

func (a attemptRequest) toAttempt() (model.Attempt, error) {
	if strings.TrimSpace(a.Target) == "" {
		return model.Attempt{}, errors.New("missing target")
	}
	out := model.Attempt{
		AttemptID:  strings.TrimSpace(a.AttemptID),
		LineID:     strings.TrimSpace(a.LineID),
		Target:     a.Target,
		Transcript: a.Transcript,
		Locale:     a.Locale,
	}
	if out.AttemptID == "" {
		out.AttemptID = uuid.NewString()
	}
	if out.LineID == "" {
		out.LineID = scoring.LineKey(a.Target)
	}
	if ts := strings.TrimSpace(a.TS); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return model.Attempt{}, errors.New("invalid ts; must be RFC3339")
		}
		out.TS = parsed
	}
	return out, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	AttemptID string `json:"attempt_id"`
	LineID    string `json:"line_id"`
}

// HandlePostAttempt handles POST /attempts requests.
func (h *AttemptsHandler) HandlePostAttempt(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_attempt"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req attemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := req.toAttempt()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), a.AttemptID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, AttemptID: a.AttemptID, LineID: a.LineID})
		return
	}

	if err := h.deps.Enqueue(r.Context(), a); err != nil {
		// Forget the ID so the client may retry.
		h.deps.Unrecord(r.Context(), a.AttemptID)
		if errors.Is(err, queue.ErrQueueFull) {
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", AttemptID: a.AttemptID, LineID: a.LineID})
}
