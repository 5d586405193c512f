// Package streak derives a habit's streak from its completion days.
//
// A streak is the number of consecutive calendar days ending at the most
// recently completed day. It does not need to reach today: a run that ended
// last week still counts until a newer completion starts a new run.
package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/habitquest/internal/utils"
)

const day = 24 * time.Hour

// Calculate returns the streak for a set of YYYY-MM-DD completion days.
// Entries that do not parse as calendar days are ignored.
func Calculate(completedDates []string) int {
	dates := make([]time.Time, 0, len(completedDates))
	for _, d := range completedDates {
		t, err := utils.ParseDay(d)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	if len(dates) == 0 {
		return 0
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	streak := 1
	current := dates[0]
	for _, prev := range dates[1:] {
		if DaysBetween(prev, current) != 1 {
			break
		}
		streak++
		current = prev
	}
	return streak
}

// DaysBetween returns the whole number of days from a to b, floored.
// Both values are expected at midnight of their calendar day.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	days := int(diff / day)
	if diff%day < 0 {
		days--
	}
	return days
}

// Normalize drops malformed and repeated days, keeping the first occurrence
// of each day in its original position.
func Normalize(completedDates []string) []string {
	seen := make(map[string]struct{}, len(completedDates))
	out := make([]string, 0, len(completedDates))
	for _, d := range completedDates {
		if _, err := utils.ParseDay(d); err != nil {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
