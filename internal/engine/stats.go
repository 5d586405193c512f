package engine

import "math"

// Stats summarizes progress for the dashboard.
type Stats struct {
	TotalHabits     int
	CompletedOnDay  int
	BestStreak      int
	BadgesUnlocked  int
	BadgesTotal     int
	Level           int
	Experience      int
	NextLevelAt     int
	XPToNextLevel   int
	ProgressPercent int
}

// Stats computes the dashboard summary for day.
func (e *Engine) Stats(day string) Stats {
	s := Stats{
		TotalHabits:    len(e.habits),
		BadgesUnlocked: e.profile.UnlockedCount(),
		BadgesTotal:    len(e.profile.Badges),
		Level:          e.profile.Level,
		Experience:     e.profile.Experience,
		NextLevelAt:    e.profile.Threshold(),
	}
	for _, h := range e.habits {
		if h.HasCompleted(day) {
			s.CompletedOnDay++
		}
		if h.Streak > s.BestStreak {
			s.BestStreak = h.Streak
		}
	}
	s.XPToNextLevel = s.NextLevelAt - s.Experience
	s.ProgressPercent = int(math.Round(float64(s.Experience) / float64(s.NextLevelAt) * 100))
	return s
}
