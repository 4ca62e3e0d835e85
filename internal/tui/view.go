package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case ScreenOnboarding:
		content = m.viewOnboarding()
	case ScreenAuth, ScreenAddHabit:
		content = docStyle.Render(m.form.View())
	case ScreenHistory:
		content = docStyle.Render(m.history.View())
	default:
		content = m.viewDashboard()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("habitchain")
	if m.user == nil {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, subtleStyle.Render("  "+m.user.Name+" <"+m.user.Email+">"))
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render(m.errMsg)
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewOnboarding() string {
	page := onboardingPages[min(m.page, len(onboardingPages)-1)]
	dots := ""
	for i := range onboardingPages {
		if i == m.page {
			dots += "● "
		} else {
			dots += "○ "
		}
	}

	return lipgloss.Place(m.width, max(m.height-4, 10),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render(page.Title),
			"",
			page.Body,
			"",
			subtleStyle.Render(dots),
			warningStyle.Render("enter to continue"),
		),
	)
}

func (m Model) viewDashboard() string {
	s := m.summary
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statStyle.Render(fmt.Sprintf("Today\n%d/%d", s.CompletedToday, s.Total)),
		statStyle.Render(fmt.Sprintf("Streaks\n🔥 %d", s.TotalStreak)),
		statStyle.Render(fmt.Sprintf("Points\n⭐ %d", s.TotalPoints)),
	)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, stats, m.habitList.View()))
}
