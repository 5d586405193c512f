package models

import (
	"math"
	"slices"

	"github.com/julianstephens/habitquest/internal/constants"
)

// Badge is an achievement from the static catalog. Unlocked never reverts.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Color       string `json:"color"`
}

// UserProfile is the gamification state of the single local user.
type UserProfile struct {
	Username   string  `json:"username"`
	Level      int     `json:"level"`
	Experience int     `json:"experience"`
	Badges     []Badge `json:"badges"`
}

// DefaultBadges returns the badge catalog with every badge locked.
func DefaultBadges() []Badge {
	return []Badge{
		{
			ID:          constants.BadgeFirstHabit,
			Name:        "First Habit",
			Description: "Created your first habit",
			Icon:        "🏆",
			Color:       "#9b87f5",
		},
		{
			ID:          constants.BadgeStreak3,
			Name:        "3-Day Streak",
			Description: "Maintained a habit for 3 days in a row",
			Icon:        "🔥",
			Color:       "#f97316",
		},
		{
			ID:          constants.BadgeStreak7,
			Name:        "7-Day Streak",
			Description: "Maintained a habit for a week straight",
			Icon:        "⚡",
			Color:       "#fbbf24",
		},
	}
}

// DefaultProfile returns a level 1 profile with no experience and all badges locked.
func DefaultProfile(username string) UserProfile {
	if username == "" {
		username = constants.DefaultUsername
	}
	return UserProfile{
		Username:   username,
		Level:      1,
		Experience: 0,
		Badges:     DefaultBadges(),
	}
}

// Clone returns a deep copy of p.
func (p UserProfile) Clone() UserProfile {
	p.Badges = slices.Clone(p.Badges)
	return p
}

// Threshold is the experience needed to leave the current level.
func (p UserProfile) Threshold() int {
	return p.Level * constants.XPPerLevel
}

// Badge looks up a badge by id.
func (p UserProfile) Badge(id string) (Badge, bool) {
	for _, b := range p.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// UnlockedCount returns how many badges are unlocked.
func (p UserProfile) UnlockedCount() int {
	n := 0
	for _, b := range p.Badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}

// RollOver converts surplus experience into levels until Experience is below
// the threshold of the current level. It returns the levels gained. Level is
// kept within [1, MaxLevel] and Experience is never negative.
func (p *UserProfile) RollOver() int {
	p.Level = min(max(p.Level, 1), constants.MaxLevel)
	p.Experience = max(p.Experience, 0)

	// largest n whose climb cost fits in the available experience
	lo, hi := 0, constants.MaxLevel-p.Level
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if cost, ok := climbCost(p.Level, mid); ok && cost <= p.Experience {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	cost, _ := climbCost(p.Level, lo)
	p.Experience -= cost
	p.Level += lo
	if p.Experience >= p.Threshold() {
		p.Experience = p.Threshold() - 1
	}
	return lo
}

// climbCost is the experience needed to go up n levels from level:
// XPPerLevel * (n*level + n*(n-1)/2). ok is false when it exceeds MaxInt.
func climbCost(level, n int) (int, bool) {
	if n == 0 {
		return 0, true
	}
	var tri int
	var ok bool
	if n%2 == 0 {
		tri, ok = mulNonNeg(n/2, n-1)
	} else {
		tri, ok = mulNonNeg(n, (n-1)/2)
	}
	if !ok {
		return 0, false
	}
	base, ok := mulNonNeg(n, level)
	if !ok || base > math.MaxInt-tri {
		return 0, false
	}
	return mulNonNeg(base+tri, constants.XPPerLevel)
}

func mulNonNeg(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
