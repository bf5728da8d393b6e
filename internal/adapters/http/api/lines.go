package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/voicepartner/internal/adapters/repository"
	service "github.com/okian/voicepartner/internal/app"
	"github.com/okian/voicepartner/internal/domain/types"
)

// Line board orderings accepted by GET /lines.
const (
	orderBest  = "best"
	orderWorst = "worst"

	defaultLinesLimit = 10
)

// LinesDependencies defines the interface for line board reads.
type LinesDependencies interface {
	Lines(ctx context.Context, n int, order string) ([]types.LineEntry, error)
	Line(ctx context.Context, lineID string) (types.LineEntry, error)
}

// LinesHandler handles line board requests.
type LinesHandler struct {
	deps     LinesDependencies
	maxLimit int
}

// NewLinesHandler creates a new lines handler.
func NewLinesHandler(deps LinesDependencies, maxLimit int) *LinesHandler {
	return &LinesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLines handles GET /lines?limit=N&order=best|worst requests.
func (h *LinesHandler) HandleGetLines(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lines"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	n := defaultLinesLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	order := strings.ToLower(q.Get("order"))
	switch order {
	case "":
		order = orderBest
	case orderBest, orderWorst:
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("order must be best or worst")))
		return
	}
	entries, err := h.deps.Lines(r.Context(), n, order)
	if err != nil {
		writeBoardError(w, op, err)
		return
	}
	if entries == nil {
		entries = []types.LineEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetLine handles GET /lines/{line_id} requests.
func (h *LinesHandler) HandleGetLine(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_line"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	lineID := strings.TrimPrefix(r.URL.Path, "/lines/")
	if lineID == "" || strings.Contains(lineID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Line(r.Context(), lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeBoardError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// writeBoardError reports a line board read failure. A board that is not
// running yet is a temporary condition, not a server fault.
func writeBoardError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
