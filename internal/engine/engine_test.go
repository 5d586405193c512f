package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

var fixedNow = time.Date(2024, 3, 3, 9, 30, 0, 0, time.UTC)

// fakeStore records saves and can be told to fail them.
type fakeStore struct {
	habits  []models.Habit
	profile *models.UserProfile

	habitSaves   int
	profileSaves int
	failHabits   error
	failProfile  error
}

func (f *fakeStore) Load() ([]models.Habit, models.UserProfile) {
	profile := models.DefaultProfile("tester")
	if f.profile != nil {
		profile = f.profile.Clone()
	}
	return f.habits, profile
}

func (f *fakeStore) SaveHabits(habits []models.Habit) error {
	f.habitSaves++
	if f.failHabits != nil {
		return &apperrors.PersistenceError{Op: "save", Key: constants.HabitsKey, Err: f.failHabits}
	}
	f.habits = habits
	return nil
}

func (f *fakeStore) SaveProfile(profile models.UserProfile) error {
	f.profileSaves++
	if f.failProfile != nil {
		return &apperrors.PersistenceError{Op: "save", Key: constants.ProfileKey, Err: f.failProfile}
	}
	p := profile.Clone()
	f.profile = &p
	return nil
}

func newTestEngine(t *testing.T, store *fakeStore) (*Engine, *[]Event) {
	t.Helper()
	n := 0
	e := New(store, Options{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("habit-%d", n)
		},
	})
	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })
	return e, &events
}

func withProfile(level, xp int) *fakeStore {
	p := models.DefaultProfile("tester")
	p.Level = level
	p.Experience = xp
	return &fakeStore{profile: &p}
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewDefaults(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})

	if len(e.Habits()) != 0 {
		t.Errorf("Habits() = %v, want empty", e.Habits())
	}
	p := e.Profile()
	if p.Level != 1 || p.Experience != 0 || p.UnlockedCount() != 0 {
		t.Errorf("Profile() = %+v, want level 1, 0 XP, no badges", p)
	}
}

func TestNewRollsOverLoadedProfile(t *testing.T) {
	e, _ := newTestEngine(t, withProfile(1, 250))
	if p := e.Profile(); p.Level != 2 || p.Experience != 150 {
		// 250 at level 1 -> level 2 with 150, which is below 200
		t.Errorf("Profile() = level %d xp %d, want 2/150", p.Level, p.Experience)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a, _ := newTestEngine(t, &fakeStore{})
	b, _ := newTestEngine(t, &fakeStore{})

	if _, err := a.CreateHabit(HabitInput{Name: "Read"}); err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if len(b.Habits()) != 0 || b.Profile().Experience != 0 {
		t.Error("mutating one engine changed another")
	}
}

func TestCreateHabit(t *testing.T) {
	store := &fakeStore{}
	e, events := newTestEngine(t, store)

	h, err := e.CreateHabit(HabitInput{Name: "  Meditate ", Description: "10 minutes", Icon: "🧘", Color: "#9b87f5"})
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}

	if h.ID != "habit-1" || h.Name != "Meditate" || h.Streak != 0 || len(h.CompletedDates) != 0 {
		t.Errorf("CreateHabit() = %+v", h)
	}
	if h.Frequency != models.FrequencyDaily {
		t.Errorf("frequency = %q, want daily default", h.Frequency)
	}
	if !h.CreatedAt.Equal(fixedNow) {
		t.Errorf("createdAt = %v, want %v", h.CreatedAt, fixedNow)
	}
	if store.habitSaves != 1 || len(store.habits) != 1 {
		t.Errorf("habit saves = %d with %d habits, want 1 save of 1 habit", store.habitSaves, len(store.habits))
	}

	want := []EventType{EventHabitCreated, EventBadgeUnlocked}
	if got := eventTypes(*events); !equalTypes(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestCreateHabitValidation(t *testing.T) {
	tests := []struct {
		name  string
		input HabitInput
		field string
	}{
		{name: "empty name", input: HabitInput{Name: ""}, field: "name"},
		{name: "whitespace name", input: HabitInput{Name: " \t\n"}, field: "name"},
		{name: "unknown frequency", input: HabitInput{Name: "Run", Frequency: "hourly"}, field: "frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			e, events := newTestEngine(t, store)

			_, err := e.CreateHabit(tt.input)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("CreateHabit() error = %v, want ErrValidation", err)
			}
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("validation field = %v, want %q", verr, tt.field)
			}
			if len(e.Habits()) != 0 || e.Profile().UnlockedCount() != 0 {
				t.Error("rejected create changed state")
			}
			if store.habitSaves+store.profileSaves != 0 || len(*events) != 0 {
				t.Error("rejected create saved or emitted events")
			}
		})
	}
}

func TestFirstHabitBadgeOnlyOnce(t *testing.T) {
	e, events := newTestEngine(t, &fakeStore{})

	if _, err := e.CreateHabit(HabitInput{Name: "One"}); err != nil {
		t.Fatal(err)
	}
	b, _ := e.Profile().Badge(constants.BadgeFirstHabit)
	if !b.Unlocked {
		t.Fatal("first habit did not unlock the first-habit badge")
	}
	if xp := e.Profile().Experience; xp != constants.BadgeXP {
		t.Errorf("experience = %d, want %d", xp, constants.BadgeXP)
	}

	*events = nil
	if _, err := e.CreateHabit(HabitInput{Name: "Two"}); err != nil {
		t.Fatal(err)
	}
	if xp := e.Profile().Experience; xp != constants.BadgeXP {
		t.Errorf("second habit changed experience to %d", xp)
	}
	if got := eventTypes(*events); !equalTypes(got, []EventType{EventHabitCreated}) {
		t.Errorf("second create events = %v", got)
	}
}

func TestFirstHabitBadgeAfterStoreEmptied(t *testing.T) {
	// The badge is already unlocked, so re-creating after removal is a no-op.
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "One"})
	if err := e.RemoveHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateHabit(HabitInput{Name: "Again"}); err != nil {
		t.Fatal(err)
	}
	if xp := e.Profile().Experience; xp != constants.BadgeXP {
		t.Errorf("experience = %d, want the badge bonus awarded once", xp)
	}
}

func TestUpdateHabit(t *testing.T) {
	store := &fakeStore{}
	e, events := newTestEngine(t, store)
	h, _ := e.CreateHabit(HabitInput{Name: "Walk"})
	*events = nil

	edited := h
	edited.Name = "Long walk"
	edited.Frequency = models.FrequencyWeekly
	edited.CreatedAt = time.Time{}
	edited.CompletedDates = []string{"2024-03-01", "2024-03-02", "2024-03-02", "garbage"}
	edited.Streak = 42

	if err := e.UpdateHabit(edited); err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}

	got, ok := e.Habit(h.ID)
	if !ok {
		t.Fatal("habit disappeared")
	}
	if got.Name != "Long walk" || got.Frequency != models.FrequencyWeekly {
		t.Errorf("UpdateHabit() did not replace fields: %+v", got)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("createdAt = %v, want it preserved", got.CreatedAt)
	}
	if got.Streak != 2 || len(got.CompletedDates) != 2 {
		t.Errorf("streak = %d dates = %v, want recomputed 2 over 2 days", got.Streak, got.CompletedDates)
	}
	if types := eventTypes(*events); !equalTypes(types, []EventType{EventHabitUpdated}) {
		t.Errorf("events = %v", types)
	}
}

func TestUpdateHabitUnknownIsNoop(t *testing.T) {
	store := &fakeStore{}
	e, events := newTestEngine(t, store)

	for _, h := range []models.Habit{
		{ID: "missing", Name: "Ghost"},
		{ID: "missing", Name: ""},
		{ID: "missing", Name: "Ghost", Frequency: "hourly"},
	} {
		if err := e.UpdateHabit(h); err != nil {
			t.Fatalf("UpdateHabit(%+v) error = %v, want silent no-op", h, err)
		}
	}
	if len(e.Habits()) != 0 || store.habitSaves != 0 || len(*events) != 0 {
		t.Error("update of unknown id changed state")
	}
}

func TestUpdateHabitRejectsEmptyName(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Walk"})
	h.Name = "   "

	if err := e.UpdateHabit(h); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("UpdateHabit() error = %v, want ErrValidation", err)
	}
	if got, _ := e.Habit(h.ID); got.Name != "Walk" {
		t.Errorf("name = %q, want unchanged", got.Name)
	}
}

func TestRemoveHabit(t *testing.T) {
	store := &fakeStore{}
	e, events := newTestEngine(t, store)
	a, _ := e.CreateHabit(HabitInput{Name: "A"})
	b, _ := e.CreateHabit(HabitInput{Name: "B"})
	*events = nil

	if err := e.RemoveHabit(a.ID); err != nil {
		t.Fatal(err)
	}
	habits := e.Habits()
	if len(habits) != 1 || habits[0].ID != b.ID {
		t.Errorf("Habits() = %+v, want only B", habits)
	}
	if types := eventTypes(*events); !equalTypes(types, []EventType{EventHabitRemoved}) {
		t.Errorf("events = %v", types)
	}

	saves := store.habitSaves
	if err := e.RemoveHabit("missing"); err != nil {
		t.Fatalf("RemoveHabit(missing) error = %v", err)
	}
	if store.habitSaves != saves {
		t.Error("removing an unknown id saved")
	}
}

func TestToggleCompletionTwiceRestores(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Stretch"})
	for _, d := range []string{"2024-03-01", "2024-03-02"} {
		if _, err := e.ToggleCompletion(h.ID, d); err != nil {
			t.Fatal(err)
		}
	}
	before, _ := e.Habit(h.ID)

	on, err := e.ToggleCompletion(h.ID, "2024-03-05")
	if err != nil || !on {
		t.Fatalf("first toggle = %v, %v", on, err)
	}
	off, err := e.ToggleCompletion(h.ID, "2024-03-05")
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v", off, err)
	}

	after, _ := e.Habit(h.ID)
	if after.Streak != before.Streak || len(after.CompletedDates) != len(before.CompletedDates) {
		t.Errorf("after two toggles = %+v, want %+v", after, before)
	}
	for i := range before.CompletedDates {
		if after.CompletedDates[i] != before.CompletedDates[i] {
			t.Errorf("completedDates = %v, want %v", after.CompletedDates, before.CompletedDates)
			break
		}
	}
}

func TestToggleCompletionAwardsOnlyWhenCompleting(t *testing.T) {
	e, events := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Stretch"})
	base := e.Profile().Experience
	*events = nil

	_, _ = e.ToggleCompletion(h.ID, "2024-03-01")
	if xp := e.Profile().Experience; xp != base+constants.CompletionXP {
		t.Errorf("experience after completing = %d, want %d", xp, base+constants.CompletionXP)
	}
	_, _ = e.ToggleCompletion(h.ID, "2024-03-01")
	if xp := e.Profile().Experience; xp != base+constants.CompletionXP {
		t.Errorf("experience after un-completing = %d, want it unchanged", xp)
	}

	if len(*events) != 2 || !(*events)[0].Completed || (*events)[1].Completed {
		t.Errorf("toggle events = %+v, want completed then uncompleted", *events)
	}
}

func TestToggleCompletionScenario(t *testing.T) {
	e, events := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Journal"})

	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		if _, err := e.ToggleCompletion(h.ID, d); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := e.Habit(h.ID)
	if got.Streak != 3 {
		t.Fatalf("streak = %d, want 3", got.Streak)
	}
	if b, _ := e.Profile().Badge(constants.BadgeStreak3); !b.Unlocked {
		t.Error("3-day streak badge not unlocked")
	}
	// 50 (first habit) + 3*10 + 50 (streak-3) = 130 -> level 2 with 30
	if p := e.Profile(); p.Level != 2 || p.Experience != 30 {
		t.Errorf("profile = level %d xp %d, want 2/30", p.Level, p.Experience)
	}

	var sawLevelUp bool
	for _, ev := range *events {
		if ev.Type == EventLevelUp && ev.Level == 2 {
			sawLevelUp = true
		}
	}
	if !sawLevelUp {
		t.Errorf("events = %v, want a level_up to 2", eventTypes(*events))
	}

	if _, err := e.ToggleCompletion(h.ID, "2024-03-03"); err != nil {
		t.Fatal(err)
	}
	got, _ = e.Habit(h.ID)
	if got.Streak != 2 {
		t.Errorf("streak after toggling off the newest day = %d, want 2", got.Streak)
	}
	if b, _ := e.Profile().Badge(constants.BadgeStreak3); !b.Unlocked {
		t.Error("streak-3 badge reverted")
	}
}

func TestSevenDayStreakBadge(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Code"})

	for d := 1; d <= 7; d++ {
		if _, err := e.ToggleCompletion(h.ID, fmt.Sprintf("2024-02-%02d", d)); err != nil {
			t.Fatal(err)
		}
		b, _ := e.Profile().Badge(constants.BadgeStreak7)
		if b.Unlocked != (d == 7) {
			t.Errorf("after day %d streak-7 unlocked = %v", d, b.Unlocked)
		}
	}
}

func TestStreakBadgeCheckedWhenUncompleting(t *testing.T) {
	store := &fakeStore{habits: []models.Habit{{
		ID:             "h1",
		Name:           "Imported",
		Frequency:      models.FrequencyDaily,
		CompletedDates: []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-10"},
		Streak:         1,
	}}}
	e, _ := newTestEngine(t, store)

	if b, _ := e.Profile().Badge(constants.BadgeStreak3); b.Unlocked {
		t.Fatal("badge unlocked before any toggle")
	}
	on, err := e.ToggleCompletion("h1", "2024-03-10")
	if err != nil || on {
		t.Fatalf("ToggleCompletion() = %v, %v", on, err)
	}
	if b, _ := e.Profile().Badge(constants.BadgeStreak3); !b.Unlocked {
		t.Error("un-completing down to a 3 day run did not unlock streak-3")
	}
}

func TestToggleCompletionUnknownAndInvalid(t *testing.T) {
	store := &fakeStore{}
	e, events := newTestEngine(t, store)

	on, err := e.ToggleCompletion("missing", "2024-03-01")
	if err != nil || on {
		t.Errorf("ToggleCompletion(missing) = %v, %v, want false, nil", on, err)
	}

	h, _ := e.CreateHabit(HabitInput{Name: "Run"})
	*events = nil
	for _, day := range []string{"", "2024-3-1", "2024-02-30", "yesterday"} {
		if _, err := e.ToggleCompletion(h.ID, day); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("ToggleCompletion(%q) error = %v, want ErrValidation", day, err)
		}
	}
	if got, _ := e.Habit(h.ID); len(got.CompletedDates) != 0 || len(*events) != 0 {
		t.Error("invalid day changed state")
	}
}

func TestIsCompleted(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Run"})
	_, _ = e.ToggleCompletion(h.ID, "2024-03-01")

	if !e.IsCompleted(h.ID, "2024-03-01") {
		t.Error("IsCompleted() = false for a completed day")
	}
	if e.IsCompleted(h.ID, "2024-03-02") || e.IsCompleted("missing", "2024-03-01") {
		t.Error("IsCompleted() = true for an incomplete day or unknown habit")
	}
}

func TestReturnedHabitsAreCopies(t *testing.T) {
	e, _ := newTestEngine(t, &fakeStore{})
	h, _ := e.CreateHabit(HabitInput{Name: "Run"})
	_, _ = e.ToggleCompletion(h.ID, "2024-03-01")

	got, _ := e.Habit(h.ID)
	got.CompletedDates[0] = "1999-01-01"
	got.Streak = 99
	list := e.Habits()
	list[0].Name = "mutated"

	if stored, _ := e.Habit(h.ID); stored.CompletedDates[0] != "2024-03-01" || stored.Name != "Run" {
		t.Errorf("caller mutation leaked into the engine: %+v", stored)
	}
}

func TestPersistenceFailureKeepsMutation(t *testing.T) {
	store := &fakeStore{failHabits: errors.New("disk full")}
	e, events := newTestEngine(t, store)

	h, err := e.CreateHabit(HabitInput{Name: "Run"})
	if !errors.Is(err, apperrors.ErrPersistence) {
		t.Fatalf("CreateHabit() error = %v, want ErrPersistence", err)
	}
	if _, ok := e.Habit(h.ID); !ok {
		t.Error("failed save rolled back the in-memory habit")
	}
	if len(*events) == 0 {
		t.Error("events were not delivered after a failed save")
	}
	if store.profile == nil || !store.profile.Badges[0].Unlocked {
		t.Error("profile save should proceed independently of the habit save")
	}

	store.failHabits = nil
	store.failProfile = errors.New("read-only")
	on, err := e.ToggleCompletion(h.ID, "2024-03-01")
	if !on || !errors.Is(err, apperrors.ErrPersistence) {
		t.Errorf("ToggleCompletion() = %v, %v, want true with ErrPersistence", on, err)
	}
	if !e.IsCompleted(h.ID, "2024-03-01") {
		t.Error("failed profile save rolled back the completion")
	}
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	e, events := newTestEngine(t, &fakeStore{})
	e.Subscribe(func(Event) { panic("boom") })
	var late int
	e.Subscribe(func(Event) { late++ })

	if _, err := e.CreateHabit(HabitInput{Name: "Run"}); err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if len(e.Habits()) != 1 {
		t.Error("panicking subscriber affected state")
	}
	if late != len(*events) || late == 0 {
		t.Errorf("later subscriber got %d events, want %d", late, len(*events))
	}
}

func TestEventsCarryTimestamps(t *testing.T) {
	e, events := newTestEngine(t, &fakeStore{})
	_, _ = e.CreateHabit(HabitInput{Name: "Run"})
	for _, ev := range *events {
		if !ev.At.Equal(fixedNow) {
			t.Errorf("event %s at %v, want %v", ev.Type, ev.At, fixedNow)
		}
	}
	if ev := (*events)[1]; ev.BadgeID != constants.BadgeFirstHabit || ev.BadgeName != "First Habit" {
		t.Errorf("badge event = %+v", ev)
	}
}

func TestEngineOverSnapshot(t *testing.T) {
	kv := storage.NewMemoryStore()
	e := New(storage.NewSnapshot(kv, "ada"), Options{})

	h, err := e.CreateHabit(HabitInput{Name: "Read", Frequency: models.FrequencyWeekly})
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"2024-03-01", "2024-03-02"} {
		if _, err := e.ToggleCompletion(h.ID, d); err != nil {
			t.Fatal(err)
		}
	}

	reloaded := New(storage.NewSnapshot(kv, "ada"), Options{})
	got, ok := reloaded.Habit(h.ID)
	if !ok || got.Streak != 2 || got.Frequency != models.FrequencyWeekly {
		t.Errorf("reloaded habit = %+v, %v", got, ok)
	}
	if p := reloaded.Profile(); p.Experience != e.Profile().Experience || p.Username != "ada" {
		t.Errorf("reloaded profile = %+v, want %+v", p, e.Profile())
	}
	if len(got.ID) != 36 {
		t.Errorf("default id %q is not a uuid", got.ID)
	}
}
