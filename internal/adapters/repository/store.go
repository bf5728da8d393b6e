// Package repository keeps the learner's best score per practice line.
package repository

import (
	"context"
	"time"
)

// Entry is one row of the line board.
type Entry struct {
	Rank      int
	LineID    string
	Score     int
	AttemptID string
	Target    string
	UpdatedAt time.Time
}

// Best is a candidate best score for a line.
type Best struct {
	LineID    string
	Score     int
	AttemptID string
	Target    string
	TS        time.Time
}

// Store provides read/write access to the line board.
type Store interface {
	// UpdateBest records b if it beats the line's current best.
	// Returns true if the store changed.
	UpdateBest(ctx context.Context, b Best) (bool, error)

	// Rank returns the dense rank and best score of a line.
	// Returns ErrNotFound if the line has never been scored.
	Rank(ctx context.Context, lineID string) (Entry, error)

	// TopN returns the n strongest lines, best first.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// BottomN returns the n weakest lines, weakest first.
	BottomN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of lines on the board.
	Count(ctx context.Context) int
}
