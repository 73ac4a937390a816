package tui

import (
	list "github.com/charmbracelet/bubbles/list"

	"isoplane/internal/field"
)

type fieldItem struct {
	f field.Field
}

func (i fieldItem) Title() string       { return i.f.Name }
func (i fieldItem) Description() string { return i.f.Description }
func (i fieldItem) FilterValue() string { return i.f.Name }

func (m *Model) refreshFields() {
	all := field.All()
	items := make([]list.Item, 0, len(all))
	selected := 0
	for i, f := range all {
		items = append(items, fieldItem{f: f})
		if f.Name == m.field.Name {
			selected = i
		}
	}
	m.l.SetItems(items)
	m.l.Select(selected)
}

// selectField switches to a built-in field and to the threshold that
// suits it.
func (m *Model) selectField(name string) error {
	f, err := field.Lookup(name)
	if err != nil {
		m.status = "field error: " + err.Error()
		return err
	}
	m.field = f
	m.threshold = f.Threshold
	m.status = "field: " + f.Name + "  " + f.Description + "  threshold=" + num(f.Threshold)
	return nil
}
