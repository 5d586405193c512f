package engine

import (
	"strconv"
	"strings"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/streak"
	"github.com/julianstephens/habitquest/internal/utils"
)

// HabitInput holds the caller-supplied fields of a new habit.
type HabitInput struct {
	Name        string
	Description string
	Icon        string
	Frequency   models.Frequency
	Color       string
}

// Habits returns copies of all habits in creation order.
func (e *Engine) Habits() []models.Habit {
	out := make([]models.Habit, len(e.habits))
	for i, h := range e.habits {
		out[i] = h.Clone()
	}
	return out
}

// Habit returns a copy of the habit with the given id.
func (e *Engine) Habit(id string) (models.Habit, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return models.Habit{}, false
	}
	return e.habits[i].Clone(), true
}

// IsCompleted reports whether the habit was completed on day.
func (e *Engine) IsCompleted(id, day string) bool {
	i := e.indexOf(id)
	return i >= 0 && e.habits[i].HasCompleted(day)
}

// CreateHabit validates in and appends a new habit. The first habit ever
// added to an empty store unlocks the first-habit badge.
func (e *Engine) CreateHabit(in HabitInput) (models.Habit, error) {
	name, freq, err := validateHabit(in.Name, in.Frequency)
	if err != nil {
		return models.Habit{}, err
	}

	wasEmpty := len(e.habits) == 0
	h := models.Habit{
		ID:             e.newID(),
		Name:           name,
		Description:    in.Description,
		Icon:           in.Icon,
		Frequency:      freq,
		CompletedDates: []string{},
		CreatedAt:      e.now(),
		Streak:         0,
		Color:          in.Color,
	}
	e.habits = append(e.habits, h)
	e.habitsDirty = true
	e.emit(Event{Type: EventHabitCreated, HabitID: h.ID})

	if wasEmpty {
		_ = e.unlock(constants.BadgeFirstHabit)
	}

	return h.Clone(), e.commit()
}

// UpdateHabit replaces the stored habit with the same id. The id and
// createdAt of the stored record are kept and the streak is recomputed from
// the new completion set. Unknown ids are ignored.
func (e *Engine) UpdateHabit(h models.Habit) error {
	i := e.indexOf(h.ID)
	if i < 0 {
		return nil
	}

	name, freq, err := validateHabit(h.Name, h.Frequency)
	if err != nil {
		return err
	}

	updated := h.Clone()
	updated.Name = name
	updated.Frequency = freq
	updated.CreatedAt = e.habits[i].CreatedAt
	updated.CompletedDates = streak.Normalize(updated.CompletedDates)
	updated.Streak = streak.Calculate(updated.CompletedDates)

	e.habits[i] = updated
	e.habitsDirty = true
	e.emit(Event{Type: EventHabitUpdated, HabitID: h.ID})
	return e.commit()
}

// RemoveHabit deletes the habit. Unknown ids are ignored.
func (e *Engine) RemoveHabit(id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	e.habits = append(e.habits[:i], e.habits[i+1:]...)
	e.habitsDirty = true
	e.emit(Event{Type: EventHabitRemoved, HabitID: id})
	return e.commit()
}

// ToggleCompletion flips the completion of day for the habit and returns the
// new state. Completing awards XP. Streak badges are checked on every toggle.
// Unknown ids are ignored and report false.
func (e *Engine) ToggleCompletion(id, day string) (bool, error) {
	if !utils.ValidateDay(day) {
		return false, apperrors.NewValidation("day", "expected YYYY-MM-DD, got "+strconv.Quote(day))
	}

	i := e.indexOf(id)
	if i < 0 {
		return false, nil
	}

	h := e.habits[i].Clone()
	completed := !h.HasCompleted(day)
	if completed {
		h.CompletedDates = append(h.CompletedDates, day)
	} else {
		h.CompletedDates = remove(h.CompletedDates, day)
	}
	h.Streak = streak.Calculate(h.CompletedDates)

	e.habits[i] = h
	e.habitsDirty = true
	e.emit(Event{Type: EventCompletionToggled, HabitID: id, Completed: completed})

	if completed {
		e.award(constants.CompletionXP)
	}
	e.checkStreakBadges(h.Streak)

	return completed, e.commit()
}

func (e *Engine) indexOf(id string) int {
	for i := range e.habits {
		if e.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func validateHabit(name string, freq models.Frequency) (string, models.Frequency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperrors.NewValidation("name", "cannot be empty")
	}
	if freq == "" {
		freq = models.FrequencyDaily
	}
	if !freq.Valid() {
		return "", "", apperrors.NewValidation("frequency", "must be daily or weekly, got "+strconv.Quote(string(freq)))
	}
	return name, freq, nil
}

func remove(days []string, day string) []string {
	out := days[:0]
	for _, d := range days {
		if d != day {
			out = append(out, d)
		}
	}
	return out
}
