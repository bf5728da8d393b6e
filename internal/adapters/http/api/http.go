// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AttemptDependencies
	ScoreDependencies
	LinesDependencies
	ProgressDependencies
	SettingsDependencies
	SpeakDependencies
}

// Server wires HTTP routes for the practice API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scoreHandler    *ScoreHandler
	attemptsHandler *AttemptsHandler
	linesHandler    *LinesHandler
	progressHandler *ProgressHandler
	settingsHandler *SettingsHandler
	speakHandler    *SpeakHandler
	lessonsHandler  *LessonsHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// number of rows a single line board request may return.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		scoreHandler:    NewScoreHandler(deps),
		attemptsHandler: NewAttemptsHandler(deps),
		linesHandler:    NewLinesHandler(deps, maxLimit),
		progressHandler: NewProgressHandler(deps),
		settingsHandler: NewSettingsHandler(deps),
		speakHandler:    NewSpeakHandler(deps),
		lessonsHandler:  NewLessonsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/score", MetricsMiddleware(s.scoreHandler.HandlePostScore, "score"))
	mux.HandleFunc("/attempts", MetricsMiddleware(s.attemptsHandler.HandlePostAttempt, "attempts"))
	mux.HandleFunc("/lines", MetricsMiddleware(s.linesHandler.HandleGetLines, "lines"))
	mux.HandleFunc("/lines/", MetricsMiddleware(s.linesHandler.HandleGetLine, "line"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))
	mux.HandleFunc("/settings", MetricsMiddleware(s.settingsHandler.HandleSettings, "settings"))
	mux.HandleFunc("/settings/export", MetricsMiddleware(s.settingsHandler.HandleExport, "settings_export"))
	mux.HandleFunc("/settings/import", MetricsMiddleware(s.settingsHandler.HandleImport, "settings_import"))
	mux.HandleFunc("/personas", MetricsMiddleware(s.settingsHandler.HandlePersonas, "personas"))
	mux.HandleFunc("/speak", MetricsMiddleware(s.speakHandler.HandlePostSpeak, "speak"))
	mux.HandleFunc("/lessons", MetricsMiddleware(s.lessonsHandler.HandleGetLessons, "lessons"))
	mux.HandleFunc("/lessons/", MetricsMiddleware(s.lessonsHandler.HandleGetLesson, "lesson"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON document from r's body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

const maxBodyBytes = 1 << 20
