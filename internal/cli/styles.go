// Package cli implements the flowboard command line interface.
package cli

import "github.com/charmbracelet/lipgloss"

// Semantic status colors, adaptive for light and dark terminals.
var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMute)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// statusStyle picks a style for a pipeline phase in listings.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "Done":
		return passStyle
	case "Rejected":
		return failStyle
	case "Pending Approval":
		return warnStyle
	default:
		return lipgloss.NewStyle()
	}
}
