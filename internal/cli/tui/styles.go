package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title lipgloss.Style
	Timer lipgloss.Style
	Info  lipgloss.Style

	// Scenario styling
	Spinner      lipgloss.Style
	ScenarioName lipgloss.Style
	Phase        lipgloss.Style
	Passed       lipgloss.Style
	Failed       lipgloss.Style
	Score        lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Spinner:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ScenarioName: lipgloss.NewStyle().Bold(true),
		Phase:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		Passed:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Failed:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Score:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconPassed = "✓"
	IconFailed = "✗"
)
