package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tui/components/habits"
)

const headerHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmRemove:
		return m.updateConfirmRemove(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.habits.SetSize(msg.Width-h, msg.Height-v-headerHeight)
		return m, nil

	case tea.KeyMsg:
		if m.state == StateToday && m.habits.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + SessionState(len(tabTitles)) - 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case m.state == StateInbox && key.Matches(msg, m.keys.ReadAll):
			if m.inbox != nil {
				m.report(m.inbox.MarkAllRead())
			}
			return m, nil
		}

	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{Frequency: models.FrequencyDaily}
		m.form = newHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case dayTickMsg:
		if m.rollDay() {
			m.refresh()
		}
		return m, dayTick()

	case habits.ToggleHabitMsg:
		m.rollDay()
		_, err := m.engine.ToggleCompletion(msg.ID, m.today)
		m.refresh()
		m.report(err)
		return m, nil

	case habits.RemoveHabitMsg:
		if h, ok := m.engine.Habit(msg.ID); ok {
			m.habitToRemove = h
			m.state = StateConfirmRemove
		}
		return m, nil
	}

	if m.state != StateToday {
		return m, nil
	}
	var cmd tea.Cmd
	m.habits, cmd = m.habits.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateToday
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		_, err := m.engine.CreateHabit(engine.HabitInput{
			Name:        m.habitForm.Name,
			Description: m.habitForm.Description,
			Icon:        m.habitForm.Icon,
			Frequency:   m.habitForm.Frequency,
			Color:       m.habitForm.Color,
		})
		m.refresh()
		m.report(err)
		m.state = StateToday
	case huh.StateAborted:
		m.state = StateToday
	}
	return m, cmd
}

func (m Model) updateConfirmRemove(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			err := m.engine.RemoveHabit(m.habitToRemove.ID)
			m.refresh()
			m.report(err)
			m.state = StateToday
			m.habitToRemove = models.Habit{}
		case "n", "N", "esc", "q":
			m.state = StateToday
			m.habitToRemove = models.Habit{}
		}
	}
	return m, nil
}
