package engine

import (
	"math"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
)

// Profile returns a copy of the user profile.
func (e *Engine) Profile() models.UserProfile {
	return e.profile.Clone()
}

// AwardExperience adds amount XP and rolls any surplus into new levels,
// one level_up event per level gained. Jumps of more than MaxLevelUpEvents
// levels emit a single event for the final level. Experience saturates at
// MaxInt. Non-positive amounts are ignored.
func (e *Engine) AwardExperience(amount int) error {
	e.award(amount)
	return e.commit()
}

// UnlockBadge unlocks the badge and awards its XP bonus. Unlocking an
// already unlocked badge does nothing.
func (e *Engine) UnlockBadge(id string) error {
	if err := e.unlock(id); err != nil {
		return err
	}
	return e.commit()
}

func (e *Engine) award(amount int) {
	if amount <= 0 {
		return
	}
	if amount > math.MaxInt-e.profile.Experience {
		e.profile.Experience = math.MaxInt
	} else {
		e.profile.Experience += amount
	}
	e.profileDirty = true

	from := e.profile.Level
	gained := e.profile.RollOver()
	if gained > constants.MaxLevelUpEvents {
		e.emit(Event{Type: EventLevelUp, Level: e.profile.Level})
		return
	}
	for l := from + 1; l <= e.profile.Level; l++ {
		e.emit(Event{Type: EventLevelUp, Level: l})
	}
}

func (e *Engine) unlock(id string) error {
	for i := range e.profile.Badges {
		b := &e.profile.Badges[i]
		if b.ID != id {
			continue
		}
		if b.Unlocked {
			return nil
		}
		b.Unlocked = true
		e.profileDirty = true
		e.emit(Event{Type: EventBadgeUnlocked, BadgeID: b.ID, BadgeName: b.Name})
		e.award(constants.BadgeXP)
		return nil
	}
	return apperrors.NotFoundf("badge %q", id)
}

// checkStreakBadges unlocks the streak badges a habit has earned.
func (e *Engine) checkStreakBadges(streak int) {
	if streak >= constants.Streak3Threshold {
		_ = e.unlock(constants.BadgeStreak3)
	}
	if streak >= constants.Streak7Threshold {
		_ = e.unlock(constants.BadgeStreak7)
	}
}
