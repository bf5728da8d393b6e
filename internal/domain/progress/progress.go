// Package progress tracks a single learner's practice: XP, level, day streak
// and achievements.
package progress

import (
	"sync"
	"time"

	"github.com/okian/voicepartner/internal/domain/model"
)

// Snapshot is a point-in-time copy of the learner's progress.
type Snapshot struct {
	XP             int           `json:"xp"`
	Level          int           `json:"level"`
	LevelProgress  int           `json:"level_progress"`
	Streak         int           `json:"streak"`
	LastPracticeAt time.Time     `json:"last_practice_at,omitzero"`
	Attempts       int           `json:"attempts"`
	AttemptsToday  int           `json:"attempts_today"`
	DailyGoal      int           `json:"daily_goal"`
	BestScore      int           `json:"best_score"`
	AverageScore   float64       `json:"average_score"`
	LinesPractised int           `json:"lines_practised"`
	Achievements   []Achievement `json:"achievements"`
}

// Tracker accumulates outcomes. It is safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	xpPerLevel int
	dailyGoal  func() int
	now        func() time.Time

	xp            int
	streak        int
	lastDay       time.Time
	attempts      int
	attemptsToday int
	bestScore     int
	scoreSum      int
	lines         map[string]struct{}
	unlocked      map[AchievementID]time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		xpPerLevel: defaultXPPerLevel,
		dailyGoal:  func() int { return defaultDailyGoal },
		now:        time.Now,
		lines:      make(map[string]struct{}),
		unlocked:   make(map[AchievementID]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record applies one scored attempt and returns the achievements it unlocked.
// Outcomes older than the last recorded day still earn XP but do not move the
// streak.
func (t *Tracker) Record(o model.Outcome) []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := o.TS
	if ts.IsZero() {
		ts = t.now()
	}
	day := utcDay(ts)

	switch {
	case t.lastDay.IsZero():
		t.streak = 1
		t.attemptsToday = 0
		t.lastDay = day
	case day.Equal(t.lastDay):
	case day.Equal(t.lastDay.AddDate(0, 0, 1)):
		t.streak++
		t.attemptsToday = 0
		t.lastDay = day
	case day.After(t.lastDay):
		t.streak = 1
		t.attemptsToday = 0
		t.lastDay = day
	}
	if day.Equal(t.lastDay) {
		t.attemptsToday++
	}

	score := max(0, o.Score)
	t.xp += score
	t.attempts++
	t.scoreSum += score
	t.bestScore = max(t.bestScore, score)
	if o.LineID != "" {
		t.lines[o.LineID] = struct{}{}
	}

	return t.unlock(ts)
}

// Snapshot returns a copy of the current progress as of now. A streak whose
// last practice day is before yesterday has lapsed and reads as zero, and
// today's attempts are zero until the learner practises today.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := utcDay(t.now())
	streak, attemptsToday := t.streak, t.attemptsToday
	if !t.lastDay.Equal(today) {
		attemptsToday = 0
	}
	if t.lastDay.Before(today.AddDate(0, 0, -1)) {
		streak = 0
	}

	s := Snapshot{
		XP:             t.xp,
		Level:          1 + t.xp/t.xpPerLevel,
		LevelProgress:  t.xp % t.xpPerLevel,
		Streak:         streak,
		LastPracticeAt: t.lastDay,
		Attempts:       t.attempts,
		AttemptsToday:  attemptsToday,
		DailyGoal:      t.dailyGoal(),
		BestScore:      t.bestScore,
		LinesPractised: len(t.lines),
		Achievements:   make([]Achievement, 0, len(catalogue)),
	}
	if t.attempts > 0 {
		s.AverageScore = float64(t.scoreSum) / float64(t.attempts)
	}
	for _, def := range catalogue {
		a := def
		if at, ok := t.unlocked[def.ID]; ok {
			a.Completed = true
			a.UnlockedAt = at
		}
		s.Achievements = append(s.Achievements, a)
	}
	return s
}

func utcDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
