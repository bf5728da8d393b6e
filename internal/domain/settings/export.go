package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export encodes s for download. JSON output is indented like the settings
// page's export file.
func (s Settings) Export(format string) ([]byte, error) {
	switch normalizeFormat(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export settings: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("export settings: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Import decodes data on top of Defaults, so files missing newer fields
// still load, then validates the result.
func Import(data []byte, format string) (Settings, error) {
	s := Defaults()
	switch normalizeFormat(format) {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if normalizeFormat(format) == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return format
	}
}
