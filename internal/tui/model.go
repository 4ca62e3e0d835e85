package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitchain/internal/app"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/habits"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/tui/components/habitlist"
	"github.com/julianstephens/habitchain/internal/tui/components/history"
)

type Screen int

const (
	ScreenOnboarding Screen = iota
	ScreenAuth
	ScreenDashboard
	ScreenAddHabit
	ScreenHistory
)

// historyDays is the window shown on the history screen
const historyDays = 30

type onboardingPage struct {
	Title string
	Body  string
}

var onboardingPages = []onboardingPage{
	{Title: "Build habits that stick", Body: "Pick a few small daily practices and check them off each day."},
	{Title: "Keep the chain going", Body: "Every completion adds a day to your streak and 10 points to your score."},
	{Title: "One check per day", Body: "Each habit can be completed once per calendar day. Come back tomorrow for the next link."},
}

type Model struct {
	app       *app.App
	screen    Screen
	keys      KeyMap
	help      help.Model
	form      *huh.Form
	authForm  *AuthFormModel
	habitForm *HabitFormModel
	habitList habitlist.Model
	history   history.Model
	summary   habits.Summary
	user      *models.Profile
	page      int
	status    string
	errMsg    string
	quitting  bool
	width     int
	height    int
}

func NewModel(a *app.App) Model {
	m := Model{
		app:       a,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(nil, 0, 0),
		history:   history.New(0, 0),
		user:      a.CurrentUser(),
	}

	switch {
	case !a.OnboardingComplete():
		m.screen = ScreenOnboarding
	case m.user == nil:
		m.startAuth(authModeLogin, "")
	default:
		m.screen = ScreenDashboard
		m.refresh()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.form != nil {
		return m.form.Init()
	}
	return nil
}

// Screen returns the screen currently shown
func (m Model) Screen() Screen {
	return m.screen
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.screen {
	case ScreenOnboarding:
		keys = append(keys, m.keys.Next)
	case ScreenDashboard:
		keys = append(keys, m.keys.Add, m.keys.Complete, m.keys.History, m.keys.Logout)
	case ScreenAddHabit, ScreenHistory:
		keys = append(keys, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp(), {m.keys.Up, m.keys.Down}}
}

// startAuth switches to the login/signup form, keeping mode and email for a retry
func (m *Model) startAuth(mode, email string) tea.Cmd {
	m.authForm = &AuthFormModel{Mode: mode, Email: email}
	m.form = NewAuthForm(m.authForm)
	m.screen = ScreenAuth
	return m.form.Init()
}

func (m *Model) startAddHabit() tea.Cmd {
	m.habitForm = &HabitFormModel{
		Category:  constants.CategoryHealth,
		Frequency: string(constants.FrequencyDaily),
	}
	m.form = NewHabitForm(m.habitForm)
	m.screen = ScreenAddHabit
	m.status = ""
	m.errMsg = ""
	return m.form.Init()
}

// refresh reloads the current user's habits and summary
func (m *Model) refresh() {
	if m.user == nil {
		return
	}
	list, err := m.app.ListHabits(m.user.ID)
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		m.errMsg = "Could not load your habits."
		return
	}
	m.habitList.SetHabits(list)
	m.summary = habits.Summarize(list)
}

func (m *Model) resize() {
	// tabs, summary box and help
	const chrome = 9
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.habitList.SetSize(m.width-4, h)
	m.history.SetSize(m.width-4, h)
}
