package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshStats rebuilds the table from the last composed frame.
func (m *Model) refreshStats() {
	rows := []table.Row{
		{"field", m.field.Name},
		{"formula", m.field.Description},
		{"threshold", num(m.threshold)},
		{"resolution", num(m.resolution)},
		{"layers", m.layers.String()},
	}
	if m.view != nil {
		c, half := m.view.Center(), m.view.HalfExtent()
		rows = append(rows,
			table.Row{"center", pair(c.X, -c.Y)},
			table.Row{"extent", pair(2*half.X, 2*half.Y)},
			table.Row{"zoom", num(m.view.Zoom()) + " units/dot"},
		)
	}
	if m.frameErr != nil {
		rows = append(rows, table.Row{"error", m.frameErr.Error()})
	} else {
		st := m.frame.Stats
		rows = append(rows,
			table.Row{"grid", fmt.Sprintf("%dx%d cells", st.Grid.Cols(), st.Grid.Rows())},
			table.Row{"sampled", fmt.Sprintf("%d", st.Cells)},
			table.Row{"saddles", fmt.Sprintf("%d", st.Saddles)},
			table.Row{"skipped", fmt.Sprintf("%d", st.Skipped)},
			table.Row{"segments", fmt.Sprintf("%d", st.Segments)},
			table.Row{"markers", fmt.Sprintf("%d", st.Markers)},
			table.Row{"grid lines", fmt.Sprintf("%d", st.Lines)},
		)
	}
	m.tbl.SetRows(rows)
}
