package tui

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"isoplane/internal/draw"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	// Grid and axis are black in the PNG; on a terminal that is invisible,
	// so they get a muted slate instead.
	gridFg  = lipgloss.Color("#475569")
	belowFg = lipgloss.Color("#22C55E")
	aboveFg = lipgloss.Color("#EF4444")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(aboveFg)
)

// termColor maps a vertex color to a terminal color.
func termColor(c color.Color) lipgloss.TerminalColor {
	switch c {
	case nil:
		return baseFg
	case color.Color(draw.Black):
		return gridFg
	case color.Color(draw.Green):
		return belowFg
	case color.Color(draw.Red):
		return aboveFg
	}
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}
