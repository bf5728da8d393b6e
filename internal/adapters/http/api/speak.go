package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/voicepartner/internal/domain/settings"
)

// SpeakDependencies has the partner say a line.
type SpeakDependencies interface {
	Speak(ctx context.Context, text string) (settings.Utterance, error)
}

// SpeakHandler handles speak requests.
type SpeakHandler struct {
	deps SpeakDependencies
}

// NewSpeakHandler creates a new speak handler.
func NewSpeakHandler(deps SpeakDependencies) *SpeakHandler {
	return &SpeakHandler{deps: deps}
}

type speakRequest struct {
	Text string `json:"text"`
}

// HandlePostSpeak handles POST /speak and returns the utterance that was
// spoken.
func (h *SpeakHandler) HandlePostSpeak(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_speak"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req speakRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing text")))
		return
	}
	u, err := h.deps.Speak(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}
