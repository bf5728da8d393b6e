package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/voicepartner/internal/domain/lessons"
)

// LessonsHandler serves the built-in lesson catalogue.
type LessonsHandler struct{}

// NewLessonsHandler creates a new lessons handler.
func NewLessonsHandler() *LessonsHandler {
	return &LessonsHandler{}
}

// HandleGetLessons handles GET /lessons.
func (h *LessonsHandler) HandleGetLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, lessons.All())
}

// HandleGetLesson handles GET /lessons/{id} and GET /lessons/{id}?line=N.
func (h *LessonsHandler) HandleGetLesson(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lesson"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/lessons/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	lesson, err := lessons.Lookup(id)
	if err != nil {
		if errors.Is(err, lessons.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	lineStr := r.URL.Query().Get("line")
	if lineStr == "" {
		writeJSON(w, http.StatusOK, lesson)
		return
	}
	i, err := strconv.Atoi(lineStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	line, ok := lesson.Line(i)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, line)
}
