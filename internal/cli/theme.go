package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for the dashboard.
type Theme struct {
	Header   lipgloss.Color
	Done     lipgloss.Color
	Working  lipgloss.Color
	Error    lipgloss.Color
	Pending  lipgloss.Color
	Hint     lipgloss.Color
	Selected lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Header:   lipgloss.Color("#5FAFD7"), // light blue
	Done:     lipgloss.Color("#00D787"), // green
	Working:  lipgloss.Color("#FFD700"), // yellow
	Error:    lipgloss.Color("#FF005F"), // red
	Pending:  lipgloss.Color("#AF87FF"), // purple
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Selected: lipgloss.Color("#FFFFFF"),
}

// Style functions for dynamic theming
func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Header).Bold(true)
}

func (t Theme) doneStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Done)
}

func (t Theme) workingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Working)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) pendingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Pending).Italic(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Selected).Bold(true)
}
