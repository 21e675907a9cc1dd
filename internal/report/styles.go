package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// Color palette
var (
	ColorWork      = lipgloss.Color("#EF4444") // Red
	ColorBreak     = lipgloss.Color("#10B981") // Green
	ColorLongBreak = lipgloss.Color("#3B82F6") // Blue
	ColorPause     = lipgloss.Color("#F59E0B") // Amber
	ColorStop      = lipgloss.Color("#9CA3AF") // Muted gray
	ColorAccent    = lipgloss.Color("#7C3AED") // Purple
	ColorMuted     = lipgloss.Color("#6B7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWork)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWork)

	phaseStyles = map[core.Phase]lipgloss.Style{
		core.PhaseWork:       lipgloss.NewStyle().Bold(true).Foreground(ColorWork),
		core.PhaseShortBreak: lipgloss.NewStyle().Foreground(ColorBreak),
		core.PhaseLongBreak:  lipgloss.NewStyle().Bold(true).Foreground(ColorLongBreak),
		core.PhasePause:      lipgloss.NewStyle().Italic(true).Foreground(ColorPause),
		core.PhaseStop:       lipgloss.NewStyle().Foreground(ColorStop),
	}
)

// PhaseStyle returns the style used to render a phase name.
func PhaseStyle(p core.Phase) lipgloss.Style {
	if s, ok := phaseStyles[p]; ok {
		return s
	}
	return mutedStyle
}
