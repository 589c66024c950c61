package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.todayModel.View())
	case StateCoach:
		content = docStyle.Render(m.chatModel.View())
	case StateStats:
		content = docStyle.Render(m.statsModel.View())
	case StateAddHabit:
		content = m.viewForm()
	case StateConfirmDelete:
		content = lipgloss.Place(m.width, max(m.height-4, 0),
			lipgloss.Center, lipgloss.Center,
			m.form.View(),
		)
	}

	parts := []string{m.viewTabs(), content}
	if m.status != "" {
		if m.statusIsError {
			parts = append(parts, dangerStyle.Render(m.status))
		} else {
			parts = append(parts, okStyle.Render(m.status))
		}
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Coach", "Stats"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewForm() string {
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", warningStyle.Render("⚠ "+m.formError))
	}
	return docStyle.Render(view)
}
