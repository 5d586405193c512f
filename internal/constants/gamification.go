package constants

import "math"

const (
	// XPPerLevel is multiplied by the current level to get the level-up threshold.
	XPPerLevel = 100

	// MaxLevel is the highest level whose threshold fits in an int.
	MaxLevel = math.MaxInt / XPPerLevel

	// MaxLevelUpEvents caps the level_up events queued by one award. Larger
	// jumps report only the final level.
	MaxLevelUpEvents = 10

	// CompletionXP is awarded each time a habit is marked complete for a day.
	CompletionXP = 10

	// BadgeXP is awarded when a badge is unlocked.
	BadgeXP = 50

	// Badge catalog ids
	BadgeFirstHabit = "first-habit"
	BadgeStreak3    = "streak-3"
	BadgeStreak7    = "streak-7"

	// Streak thresholds for the streak badges
	Streak3Threshold = 3
	Streak7Threshold = 7
)
