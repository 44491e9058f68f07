package dashboard

import (
	"github.com/aegisops/aegis/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// Theme is the renderer's styling. It is built once and passed by value;
// nothing in the view reads package-level styles.
type Theme struct {
	Thresholds ui.Thresholds

	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Panel     lipgloss.Style
	Heading   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Success   lipgloss.Style
	Failure   lipgloss.Style
	Warning   lipgloss.Style
}

// NewTheme builds the theme for the given chart thresholds.
func NewTheme(th ui.Thresholds) Theme {
	return Theme{
		Thresholds: th,

		Title: lipgloss.NewStyle().
			Foreground(ui.ColorInfo).
			Bold(true).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted).
			Padding(0, 1),
		Heading:  lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(ui.ColorMuted).Width(10),
		Value:    lipgloss.NewStyle().Foreground(ui.ColorPrimary),
		Muted:    ui.MutedStyle(),
		Cursor:   lipgloss.NewStyle().Foreground(ui.ColorInfo).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true),
		Success:  ui.SuccessStyle().Bold(true),
		Failure:  ui.ErrorStyle().Bold(true),
		Warning:  ui.WarningStyle(),
	}
}

// DefaultTheme uses the default thresholds.
func DefaultTheme() Theme {
	return NewTheme(ui.DefaultThresholds)
}

// Percent renders a utilization value coloured by the thresholds.
func (t Theme) Percent(v float64) string {
	color := ui.ThresholdColor(v, t.Thresholds.Warning, t.Thresholds.Critical)
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(formatPercent(v))
}
