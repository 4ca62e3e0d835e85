package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitchain/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	ID string
}

type ShowHistoryMsg struct {
	Habit models.Habit
}

type Item struct {
	Habit models.Habit
}

func (i Item) Title() string {
	if i.Habit.TodayCompleted {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("🔥 %d day streak | ⭐ %d pts | %s", i.Habit.Streak, i.Habit.Points, i.Habit.Frequency)
	if i.Habit.Category != "" {
		desc += " | " + i.Habit.Category
	}
	if i.Habit.ChainMembers > 1 {
		desc += fmt.Sprintf(" | 👥 %d", i.Habit.ChainMembers)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	History  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c", " "),
			key.WithHelp("c/space", "complete"),
		),
		History: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "history"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, width, height int) Model {
	l := list.New(toItems(habits), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.History}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func toItems(habits []models.Habit) []list.Item {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h}
	}
	return items
}

// SetHabits replaces the items, keeping the cursor where it was
func (m *Model) SetHabits(habits []models.Habit) {
	m.list.SetItems(toItems(habits))
}

// Selected returns the highlighted habit
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Complete):
			if h, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CompleteHabitMsg{ID: h.ID} }
			}
		case key.Matches(msg, m.keys.History):
			if h, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ShowHistoryMsg{Habit: h} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the user is typing a filter
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
