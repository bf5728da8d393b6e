// Package scoring rates a recognized attempt transcript against the target
// phrase the learner was asked to say.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Heuristic constants. These are fixed by the product and must not be tuned.
const (
	wordScoreWeight  = 60
	lengthBonus      = 20
	lengthTolerance  = 2
	apostropheBonus  = 5
	minScoreValue    = 0
	maxScoreValue    = 100
	apostropheMarker = "'"
)

// Breakdown explains how a score was reached.
type Breakdown struct {
	TargetWords     []string `json:"target_words"`
	AttemptWords    []string `json:"attempt_words"`
	Hits            int      `json:"hits"`
	WordScore       int      `json:"word_score"`
	LengthBonus     int      `json:"length_bonus"`
	ApostropheBonus int      `json:"apostrophe_bonus"`
	Raw             int      `json:"raw"`
	Score           int      `json:"score"`
}

// ScoreAttempt returns a similarity score in [0, 100] for attempt against
// target. It is total over all strings and safe for concurrent use.
func ScoreAttempt(target, attempt string) int {
	return Evaluate(target, attempt).Score
}

// Evaluate scores attempt against target and returns every intermediate value.
func Evaluate(target, attempt string) Breakdown {
	targetWords := Tokenize(target)
	attemptWords := Tokenize(attempt)

	targetSet := make(map[string]struct{}, len(targetWords))
	for _, w := range targetWords {
		targetSet[w] = struct{}{}
	}

	// Duplicate attempt tokens each count as a hit.
	hits := 0
	for _, w := range attemptWords {
		if _, ok := targetSet[w]; ok {
			hits++
		}
	}

	b := Breakdown{
		TargetWords:  targetWords,
		AttemptWords: attemptWords,
		Hits:         hits,
	}
	denominator := max(1, len(targetWords))
	b.WordScore = int(math.Round(float64(hits) / float64(denominator) * wordScoreWeight))

	diff := len(attemptWords) - len(targetWords)
	if diff < 0 {
		diff = -diff
	}
	if diff <= lengthTolerance {
		b.LengthBonus = lengthBonus
	}

	// Checked on the raw transcript, before normalization.
	if strings.Contains(attempt, apostropheMarker) {
		b.ApostropheBonus = apostropheBonus
	}

	b.Raw = b.WordScore + b.LengthBonus + b.ApostropheBonus
	b.Score = clamp(b.Raw)
	return b
}

// Normalize lower-cases s, replaces every rune outside a-z and the apostrophe
// with a space, collapses space runs and trims the result.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == '\'' {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// Tokenize splits the normalized form of s on single spaces. An input with no
// word characters yields a single empty token, so the result is never empty.
func Tokenize(s string) []string {
	return strings.Split(Normalize(s), " ")
}

func clamp(v int) int {
	return max(minScoreValue, min(maxScoreValue, v))
}

// Input is the data needed to score one attempt.
type Input struct {
	AttemptID  string
	Target     string
	Transcript string
}

// Result contains the computed score for an attempt.
type Result struct {
	AttemptID string    `json:"attempt_id,omitempty"`
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// HeuristicScorer implements Scorer with the word-overlap heuristic.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a scorer. It holds no state.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score evaluates in. It only fails when ctx is already done.
func (s *HeuristicScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	b := Evaluate(in.Target, in.Transcript)
	return Result{
		AttemptID: in.AttemptID,
		Score:     b.Score,
		Breakdown: b,
	}, nil
}
