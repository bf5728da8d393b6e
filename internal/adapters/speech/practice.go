package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/voicepartner/internal/domain/scoring"
)

// Attempt is a recognized and scored practice attempt.
type Attempt struct {
	Target     string         `json:"target"`
	Transcript Transcript     `json:"transcript"`
	Result     scoring.Result `json:"result"`
}

// Practice listens for one attempt at target and scores it. A failed
// recognition is returned without a score. An empty transcript is scored
// like any other.
func Practice(ctx context.Context, rec Recognizer, scorer scoring.Scorer, target, locale string) (Attempt, error) {
	if rec == nil {
		return Attempt{}, ErrNoRecognizer
	}
	t, err := rec.Recognize(ctx, Request{Locale: localeOrDefault(locale), Target: target})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrRecognitionAborted) {
			return Attempt{}, fmt.Errorf("%w: %w", ErrRecognitionAborted, ctxErr)
		}
		return Attempt{}, err
	}
	res, err := scorer.Score(ctx, scoring.Input{Target: target, Transcript: t.Text})
	if err != nil {
		return Attempt{}, fmt.Errorf("score attempt: %w", err)
	}
	return Attempt{Target: target, Transcript: t, Result: res}, nil
}

// Meter renders a score as the width of a progress bar, e.g. "85%".
func Meter(score int) string {
	return fmt.Sprintf("%d%%", score)
}
