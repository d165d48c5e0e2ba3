package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Header lipgloss.Color
	Value  lipgloss.Color
	Good   lipgloss.Color
	Error  lipgloss.Color
	Hint   lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Header: lipgloss.Color("#5FAFD7"), // light blue
	Value:  lipgloss.Color("#D0D0D0"), // light gray
	Good:   lipgloss.Color("#00D787"), // green
	Error:  lipgloss.Color("#FF005F"), // red
	Hint:   lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Header).Bold(true)
}

func (t Theme) valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Value)
}

func (t Theme) goodStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Good).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// severityStyle colors text with a severity's computed color
func severityStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
