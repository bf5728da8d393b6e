package progress

import "time"

// Option configures a Tracker.
type Option func(*Tracker)

// WithXPPerLevel sets how much XP one level takes. Values below 1 are ignored.
func WithXPPerLevel(xp int) Option {
	return func(t *Tracker) {
		if xp > 0 {
			t.xpPerLevel = xp
		}
	}
}

// WithDailyGoal sets where the daily attempt goal is read from. It is called
// on every Record so settings changes apply immediately.
func WithDailyGoal(goal func() int) Option {
	return func(t *Tracker) {
		if goal != nil {
			t.dailyGoal = goal
		}
	}
}

// WithClock sets the source of the current time, used to stamp outcomes
// without a timestamp and to decide which day Snapshot reports on.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}
