package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitchain/internal/models"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	missedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// Model shows one habit's completions over a window of calendar days
type Model struct {
	viewport    viewport.Model
	Habit       *models.Habit
	days        []string
	completions map[string]models.Completion
}

func New(width, height int) Model {
	return Model{
		viewport:    viewport.New(width, height),
		completions: make(map[string]models.Completion),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Habit == nil {
		return "No habit selected."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetHistory shows habit over days (newest first) with its completions
func (m *Model) SetHistory(habit models.Habit, days []string, completions []models.Completion) {
	m.Habit = &habit
	m.days = days
	m.completions = make(map[string]models.Completion, len(completions))
	for _, c := range completions {
		m.completions[c.Day] = c
	}
	m.viewport.GotoTop()
	m.Render()
}

func (m *Model) Render() {
	if m.Habit == nil {
		m.viewport.SetContent("No habit selected.")
		return
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.Habit.Name))
	fmt.Fprintf(&b, "\n🔥 %d day streak  ⭐ %d points  %d of last %d days\n\n",
		m.Habit.Streak, m.Habit.Points, len(m.completions), len(m.days))

	for _, day := range m.days {
		status := missedStyle.Render("·  not done")
		if c, ok := m.completions[day]; ok {
			status = doneStyle.Render("✓  done at " + c.CompletedAt.Local().Format("15:04"))
		}
		fmt.Fprintf(&b, "%s %s\n", dayStyle.Render(day), status)
	}
	m.viewport.SetContent(b.String())
}
