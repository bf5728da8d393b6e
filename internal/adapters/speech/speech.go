// Package speech defines the recognition and synthesis collaborators around
// the scorer. Browser or cloud engines live outside this module; the types
// here are what they plug into.
package speech

import (
	"context"

	"github.com/okian/voicepartner/internal/domain/settings"
)

// DefaultLocale is used when a request names none.
const DefaultLocale = "en-GB"

// Request asks a recognizer for a single final transcript.
type Request struct {
	Locale string
	// Target is the line being practised. Recognizers may use it as a hint;
	// none are required to.
	Target string
}

// Transcript is a final recognition result.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Locale     string  `json:"locale"`
}

// Recognizer turns one spoken attempt into text. Cancelling ctx aborts the
// session.
type Recognizer interface {
	Recognize(ctx context.Context, req Request) (Transcript, error)
}

// Synthesizer speaks a partner line.
type Synthesizer interface {
	Speak(ctx context.Context, u settings.Utterance) error
}

// VoiceLister is implemented by synthesizers that can report their voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]settings.Voice, error)
}
