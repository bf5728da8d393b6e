package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/voicepartner/internal/domain/settings"
)

// SettingsDependencies reads and writes the learner's settings.
type SettingsDependencies interface {
	Settings(ctx context.Context) settings.Settings
	UpdateSettings(ctx context.Context, p settings.Patch) (settings.Settings, error)
	ExportSettings(ctx context.Context, format string) ([]byte, error)
	ImportSettings(ctx context.Context, data []byte, format string) (settings.Settings, error)
}

// SettingsHandler handles settings requests.
type SettingsHandler struct {
	deps SettingsDependencies
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(deps SettingsDependencies) *SettingsHandler {
	return &SettingsHandler{deps: deps}
}

// HandleSettings handles GET and PUT /settings. PUT applies only the fields
// present in the body.
func (h *SettingsHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	const op = "api.settings"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Settings(r.Context()))
	case http.MethodPut:
		var p settings.Patch
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		next, err := h.deps.UpdateSettings(r.Context(), p)
		if err != nil {
			writeSettingsError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, next)
	default:
		http.NotFound(w, r)
	}
}

// HandleExport handles GET /settings/export?format=json|yaml.
func (h *SettingsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.settings_export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format := exportFormat(r)
	data, err := h.deps.ExportSettings(r.Context(), format)
	if err != nil {
		writeSettingsError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", settings.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="voicepartner-settings.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleImport handles POST /settings/import?format=json|yaml with the
// exported document as the body.
func (h *SettingsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.settings_import"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	next, err := h.deps.ImportSettings(r.Context(), data, exportFormat(r))
	if err != nil {
		writeSettingsError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// HandlePersonas handles GET /personas.
func (h *SettingsHandler) HandlePersonas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, settings.Personas())
}

func exportFormat(r *http.Request) string {
	switch f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); f {
	case "":
		return settings.FormatJSON
	case "yml":
		return settings.FormatYAML
	default:
		return f
	}
}

func writeSettingsError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, settings.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, "unsupported_format", WrapKind(op, ErrUnsupportedFormat, err))
	case errors.Is(err, settings.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, "invalid_settings", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, settings.ErrDecode):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
