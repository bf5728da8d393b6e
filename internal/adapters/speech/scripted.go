package speech

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedRecognizer replays canned transcripts in order, one per call.
type ScriptedRecognizer struct {
	mu          sync.Mutex
	transcripts []string
	next        int
}

// NewScriptedRecognizer creates a recognizer that will hear transcripts in
// order and then fail with ErrRecognitionFailed.
func NewScriptedRecognizer(transcripts ...string) *ScriptedRecognizer {
	return &ScriptedRecognizer{transcripts: append([]string(nil), transcripts...)}
}

// Push appends transcripts to the script.
func (r *ScriptedRecognizer) Push(transcripts ...string) {
	r.mu.Lock()
	r.transcripts = append(r.transcripts, transcripts...)
	r.mu.Unlock()
}

// Remaining reports how many transcripts are left.
func (r *ScriptedRecognizer) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transcripts) - r.next
}

// Recognize returns the next scripted transcript, or ErrRecognitionFailed
// once the script is used up.
func (r *ScriptedRecognizer) Recognize(ctx context.Context, req Request) (Transcript, error) {
	if err := ctx.Err(); err != nil {
		return Transcript{}, fmt.Errorf("%w: %w", ErrRecognitionAborted, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.transcripts) {
		return Transcript{}, fmt.Errorf("%w: script exhausted after %d transcripts", ErrRecognitionFailed, len(r.transcripts))
	}
	text := r.transcripts[r.next]
	r.next++
	return Transcript{Text: text, Confidence: 1, Locale: localeOrDefault(req.Locale)}, nil
}

// UnavailableRecognizer stands in where no engine is present.
type UnavailableRecognizer struct{}

// Recognize always reports ErrRecognitionUnavailable.
func (UnavailableRecognizer) Recognize(ctx context.Context, _ Request) (Transcript, error) {
	if err := ctx.Err(); err != nil {
		return Transcript{}, fmt.Errorf("%w: %w", ErrRecognitionAborted, err)
	}
	return Transcript{}, ErrRecognitionUnavailable
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return DefaultLocale
	}
	return locale
}
