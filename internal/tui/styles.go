package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles emphasized text such as the watched process name.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// FaintStyle dims hint lines under the spinner.
	FaintStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[string]lipgloss.Style{
		"captured": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"ok":       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		"waiting": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"timeout": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"missing": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skipped": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
