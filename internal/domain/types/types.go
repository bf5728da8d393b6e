// Package types contains common types used across the application
package types

// LineEntry represents a line board row
type LineEntry struct {
	Rank      int    `json:"rank"`
	LineID    string `json:"line_id"`
	Score     int    `json:"score"`
	AttemptID string `json:"attempt_id,omitempty"`
	Target    string `json:"target,omitempty"`
}
