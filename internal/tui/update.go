package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/tui/components/habitlist"
	"github.com/julianstephens/habitchain/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

	case habitlist.AddHabitMsg:
		return m, m.startAddHabit()

	case habitlist.CompleteHabitMsg:
		m.completeHabit(msg.ID)
		return m, nil

	case habitlist.ShowHistoryMsg:
		m.showHistory(msg.Habit)
		return m, nil
	}

	switch m.screen {
	case ScreenOnboarding:
		return m.updateOnboarding(msg)
	case ScreenAuth:
		return m.updateAuth(msg)
	case ScreenAddHabit:
		return m.updateAddHabit(msg)
	case ScreenHistory:
		return m.updateHistory(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m Model) updateOnboarding(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Back):
		if m.page > 0 {
			m.page--
		}
	case key.Matches(keyMsg, m.keys.Next):
		m.page++
		if m.page < len(onboardingPages) {
			return m, nil
		}
		if err := m.app.CompleteOnboarding(); err != nil {
			logger.Warn("Failed to save onboarding state", "error", err)
		}
		if m.user != nil {
			m.screen = ScreenDashboard
			m.refresh()
			return m, nil
		}
		return m, m.startAuth(authModeLogin, "")
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		fm := m.authForm
		var (
			profile models.Profile
			err     error
		)
		if fm.Mode == authModeSignup {
			profile, err = m.app.Signup(fm.Name, fm.Email, fm.Password)
		} else {
			profile, err = m.app.Login(fm.Email, fm.Password)
		}
		if err != nil {
			m.errMsg = apperrors.Message(err)
			return m, m.startAuth(fm.Mode, fm.Email)
		}

		m.user = &profile
		m.errMsg = ""
		m.status = fmt.Sprintf("Welcome, %s!", profile.Name)
		m.form = nil
		m.screen = ScreenDashboard
		m.refresh()
		return m, nil

	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
		m.form = nil
		m.screen = ScreenDashboard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		fm := m.habitForm
		habit, err := m.app.CreateHabit(m.user.ID, models.HabitFields{
			Name:         fm.Name,
			Description:  fm.Description,
			Category:     fm.Category,
			Frequency:    constants.Frequency(fm.Frequency),
			ReminderTime: fm.Reminder,
			RequirePhoto: fm.RequirePhoto,
			IsPublic:     fm.IsPublic,
		})
		if err != nil {
			// keep the entered values for another try
			m.errMsg = apperrors.Message(err)
			m.form = NewHabitForm(m.habitForm)
			return m, m.form.Init()
		}

		m.status = fmt.Sprintf("Added %s. Complete it today to start your streak!", habit.Name)
		m.errMsg = ""
		m.form = nil
		m.screen = ScreenDashboard
		m.refresh()
		return m, nil

	case huh.StateAborted:
		m.form = nil
		m.screen = ScreenDashboard
		return m, nil
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.habitList.Filtering() {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(keyMsg, m.keys.Logout):
			if err := m.app.Logout(); err != nil {
				m.errMsg = apperrors.Message(err)
				return m, nil
			}
			m.user = nil
			m.status = ""
			m.errMsg = ""
			return m, m.startAuth(authModeLogin, "")
		}
	}

	var cmd tea.Cmd
	m.habitList, cmd = m.habitList.Update(msg)
	return m, cmd
}

func (m Model) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			m.screen = ScreenDashboard
			return m, nil
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *Model) completeHabit(id string) {
	m.status = ""
	m.errMsg = ""

	habit, err := m.app.CompleteHabit(id)
	switch {
	case errors.Is(err, apperrors.ErrAlreadyCompletedToday):
		m.status = fmt.Sprintf("%s: %s", habit.Name, apperrors.Message(err))
	case err != nil:
		m.errMsg = apperrors.Message(err)
	default:
		m.status = fmt.Sprintf("Completed %s! 🔥 %d day streak, +%d points", habit.Name, habit.Streak, constants.PointsPerCompletion)
	}
	m.refresh()
}

func (m *Model) showHistory(habit models.Habit) {
	completions, err := m.app.History(habit.ID, historyDays)
	if err != nil {
		m.errMsg = apperrors.Message(err)
		return
	}

	now := m.app.Habits.Clock()
	days := make([]string, historyDays)
	for i := range days {
		days[i] = utils.DaysAgo(now, i, m.app.Habits.Location())
	}

	m.history.SetHistory(habit, days, completions)
	m.screen = ScreenHistory
}
