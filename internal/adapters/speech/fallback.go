package speech

import (
	"context"
	"errors"
	"fmt"
)

// FallbackRecognizer tries recognizers in order, moving on only when one
// reports itself unavailable. Any other failure is returned as is.
type FallbackRecognizer struct {
	recognizers []Recognizer
}

// Compile-time interface assertion.
var _ Recognizer = (*FallbackRecognizer)(nil)

// NewFallbackRecognizer creates a recognizer over primary and fallbacks.
func NewFallbackRecognizer(primary Recognizer, fallbacks ...Recognizer) *FallbackRecognizer {
	all := make([]Recognizer, 0, 1+len(fallbacks))
	for _, r := range append([]Recognizer{primary}, fallbacks...) {
		if r != nil {
			all = append(all, r)
		}
	}
	return &FallbackRecognizer{recognizers: all}
}

// Recognize returns the first transcript produced, trying the next
// recognizer only while each reports ErrRecognitionUnavailable.
func (f *FallbackRecognizer) Recognize(ctx context.Context, req Request) (Transcript, error) {
	if len(f.recognizers) == 0 {
		return Transcript{}, ErrNoRecognizer
	}
	var errs []error
	for _, r := range f.recognizers {
		t, err := r.Recognize(ctx, req)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrRecognitionUnavailable) {
			return Transcript{}, err
		}
		errs = append(errs, err)
	}
	return Transcript{}, fmt.Errorf("all %d recognizers unavailable: %w", len(f.recognizers), errors.Join(errs...))
}
