package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderPlane draws the last composed frame onto a w x h cell canvas.
func (m Model) renderPlane(w, h int) string {
	br := newBrailleBuf(w, h)
	if m.view != nil && m.frameErr == nil {
		// Batches are validated by Compose, so the braille sink cannot fail.
		_ = m.frame.Render(br, m.view)
	}
	lines := br.toLines()

	// Hover highlight: an orange cross on the hovered cell
	if m.hovering && m.view != nil {
		p := m.view.WorldToPixel(m.hoverWorld)
		cx, cy := p.X/2, p.Y/4
		if cy >= 0 && cy < h && cx >= 0 && cx < w {
			cross := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("┼")
			lines[cy] = br.renderRow(cy, 0, cx) + cross + br.renderRow(cy, cx+1, w)
		}
	}
	return strings.Join(lines, "\n")
}
