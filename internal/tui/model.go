// Package tui is the interactive dashboard: today's habits, the XP bar, the
// badge collection and the notification inbox.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/inbox"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tui/components/habits"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateBadges
	StateInbox
	StateAddHabit
	StateConfirmRemove
)

var tabTitles = []string{"Today", "Badges", "Inbox"}

type HabitFormModel struct {
	Name        string
	Description string
	Icon        string
	Frequency   models.Frequency
	Color       string
}

// eventLog collects engine events between two updates. It is shared by
// every copy of the Model.
type eventLog struct {
	events []engine.Event
}

func (l *eventLog) drain() []engine.Event {
	out := l.events
	l.events = nil
	return out
}

type Model struct {
	engine   *engine.Engine
	inbox    *inbox.Inbox
	events   *eventLog
	clock    func() string
	today    string
	state    SessionState
	keys     KeyMap
	help     help.Model
	habits   habits.Model
	progress progress.Model

	form          *huh.Form
	habitForm     *HabitFormModel
	habitToRemove models.Habit

	status   string
	errMsg   string
	quitting bool
	width    int
	height   int
}

// NewModel builds the dashboard over e. today is asked for the current day on
// every toggle and once a minute, so a session left open past midnight moves
// to the new day. in may be nil, in which case the Inbox tab stays empty.
func NewModel(e *engine.Engine, in *inbox.Inbox, today func() string) Model {
	day := today()
	log := &eventLog{}
	e.Subscribe(func(ev engine.Event) {
		log.events = append(log.events, ev)
	})

	return Model{
		engine:   e,
		inbox:    in,
		events:   log,
		clock:    today,
		today:    day,
		state:    StateToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		habits:   habits.New(e.Habits(), day, 0, 0),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Add, hk.Toggle, hk.Remove)
	case StateInbox:
		keys = append(keys, m.keys.ReadAll)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Add, hk.Toggle, hk.Remove}
	case StateInbox:
		actions = []key.Binding{m.keys.ReadAll}
	}
	return [][]key.Binding{global, navigation, actions}
}

// dayTickMsg asks the model to check whether the day has changed.
type dayTickMsg struct{}

func dayTick() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg { return dayTickMsg{} })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.habits.Init(), dayTick())
}

// rollDay moves the model to the clock's current day and reports whether it changed.
func (m *Model) rollDay() bool {
	day := m.clock()
	if day == "" || day == m.today {
		return false
	}
	m.today = day
	return true
}

func (m *Model) refresh() {
	m.habits.SetHabits(m.engine.Habits(), m.today)
}

// report turns drained events into the status line and surfaces err.
func (m *Model) report(err error) {
	var msgs []string
	for _, ev := range m.events.drain() {
		if msg, ok := inbox.Message(ev); ok {
			msgs = append(msgs, msg)
		}
	}
	m.status = strings.Join(msgs, " · ")
	m.errMsg = ""
	if err != nil {
		m.errMsg = apperrors.Format(err)
	}
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title("Icon").
				Placeholder("📚").
				Value(&fm.Icon),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Color").
				Placeholder("#9b87f5").
				Value(&fm.Color),
		),
	).WithTheme(huh.ThemeDracula())
}
