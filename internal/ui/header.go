package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderWidth is the default width of the header divider.
const HeaderWidth = 50

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string
	Tagline string
	// Mode is the runner mode badge, e.g. "SIMULATION".
	Mode string
}

// RenderHeader renders the branded header used by the one-shot commands.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	dividerStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var output strings.Builder
	output.WriteString(titleStyle.Render("aegis"))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(versionStyle.Render(info.Version))
	}
	if info.Mode != "" {
		output.WriteString(" ")
		output.WriteString(ModeBadge(info.Mode))
	}
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(MutedStyle().Render(info.Tagline))
		output.WriteString("\n")
	}

	output.WriteString(dividerStyle.Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")
	return output.String()
}

// ModeBadge renders the runner mode; simulation is yellow, active is red.
func ModeBadge(mode string) string {
	color := ColorError
	if mode == "SIMULATION" {
		color = ColorWarning
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render("[" + mode + "]")
}
