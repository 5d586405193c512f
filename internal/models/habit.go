package models

import (
	"slices"
	"time"
)

// Frequency is how often a habit is meant to be performed. It is informational
// and does not change streak math.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Habit represents a tracked behavior
type Habit struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Frequency      Frequency `json:"frequency"`
	CompletedDates []string  `json:"completedDates"` // YYYY-MM-DD, each day at most once
	CreatedAt      time.Time `json:"createdAt"`
	Streak         int       `json:"streak"`
	Color          string    `json:"color"`
}

// Clone returns a copy of h that shares no slices with it.
func (h Habit) Clone() Habit {
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

// HasCompleted reports whether day is in the completion set.
func (h Habit) HasCompleted(day string) bool {
	return slices.Contains(h.CompletedDates, day)
}
