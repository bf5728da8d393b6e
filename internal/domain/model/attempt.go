// Package model contains domain models passed between layers.
package model

import "time"

// Attempt is one spoken try at a practice line, as submitted by clients once
// speech recognition has produced a transcript.
type Attempt struct {
	AttemptID  string    // unique id for idempotency
	LineID     string    // practice line identifier
	Target     string    // the phrase the learner was asked to say
	Transcript string    // what recognition heard
	Locale     string    // recognition locale, e.g. "en-GB"
	TS         time.Time // when the attempt was made
}

// Outcome is a scored attempt, the unit applied to the line board and the
// progress tracker.
type Outcome struct {
	AttemptID string
	LineID    string
	Score     int
	TS        time.Time
}
