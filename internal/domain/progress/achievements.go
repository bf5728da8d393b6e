package progress

import "time"

// AchievementID names an achievement.
type AchievementID string

// Known achievements.
const (
	FirstAttempt         AchievementID = "first_attempt"
	PerfectPronunciation AchievementID = "perfect_pronunciation"
	ScriptScholar        AchievementID = "script_scholar"
	DailyGoal            AchievementID = "daily_goal"
	WeekStreak           AchievementID = "week_streak"
)

const (
	perfectScore      = 90
	scholarLines      = 10
	weekStreakDays    = 7
	defaultXPPerLevel = 500
	defaultDailyGoal  = 10
)

// Achievement is a milestone and whether the learner has reached it.
type Achievement struct {
	ID          AchievementID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Completed   bool          `json:"completed"`
	UnlockedAt  time.Time     `json:"unlocked_at,omitzero"`
}

var catalogue = []Achievement{
	{ID: FirstAttempt, Title: "First Attempt", Description: "Score your first attempt"},
	{ID: PerfectPronunciation, Title: "Perfect Pronunciation", Description: "Score 90%+ on pronunciation"},
	{ID: ScriptScholar, Title: "Script Scholar", Description: "Practise 10+ different lines"},
	{ID: DailyGoal, Title: "Daily Goal", Description: "Reach your daily attempt goal"},
	{ID: WeekStreak, Title: "Week Streak", Description: "Practise seven days in a row"},
}

// unlock checks every rule and records newly met ones. Caller holds t.mu.
func (t *Tracker) unlock(at time.Time) []Achievement {
	met := map[AchievementID]bool{
		FirstAttempt:         t.attempts >= 1,
		PerfectPronunciation: t.bestScore >= perfectScore,
		ScriptScholar:        len(t.lines) >= scholarLines,
		DailyGoal:            t.attemptsToday >= max(1, t.dailyGoal()),
		WeekStreak:           t.streak >= weekStreakDays,
	}

	var fresh []Achievement
	for _, def := range catalogue {
		if _, done := t.unlocked[def.ID]; done || !met[def.ID] {
			continue
		}
		t.unlocked[def.ID] = at
		a := def
		a.Completed = true
		a.UnlockedAt = at
		fresh = append(fresh, a)
	}
	return fresh
}
