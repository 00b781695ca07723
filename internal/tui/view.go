package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kaizenhq/kaizen/internal/constants"
	"github.com/kaizenhq/kaizen/internal/models"
)

const barWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = docStyle.Render(m.viewToday())
	case constants.StateScores:
		content = docStyle.Render(m.viewScores())
	case constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Scores"} {
		if m.state == constants.SessionState(i) || (m.state == constants.StateAddHabit && m.previousState == constants.SessionState(i)) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, mutedStyle.Render("  "+m.day()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	return m.today.View()
}

func (m Model) viewScores() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Last %d days, weakest first", constants.DefaultScorePeriodDays)))
	b.WriteString("\n\n")
	for _, s := range m.scores {
		b.WriteString(renderScore(s))
		b.WriteString("\n")
	}
	return b.String()
}

func renderScore(s models.CategoryScore) string {
	label := fmt.Sprintf("%-8s ", s.Category)
	if !s.HasHabits {
		return label + mutedStyle.Render(strings.Repeat("·", barWidth)+"  n/a")
	}

	style := lowStyle
	switch {
	case s.CompletionRate >= 80:
		style = highStyle
	case s.CompletionRate >= 50:
		style = midStyle
	}
	filled := s.CompletionRate * barWidth / 100
	bar := style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
	return label + bar + fmt.Sprintf(" %3d%%  %d/%d", s.CompletionRate, s.CompletedCount, s.ExpectedCount)
}

func (m Model) viewStatus() string {
	var lines []string
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Error: "+m.err.Error()))
	} else if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	if m.validationWarning != "" {
		lines = append(lines, mutedStyle.Render(m.validationWarning))
	}
	return strings.Join(lines, "\n")
}
