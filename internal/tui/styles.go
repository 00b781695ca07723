package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	headerStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// bar colours by completion rate
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	midStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
