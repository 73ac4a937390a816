package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"isoplane/internal/config"
	"isoplane/internal/contour"
	"isoplane/internal/field"
	"isoplane/internal/frame"
	"isoplane/internal/geom"
	"isoplane/internal/plane"
)

// Resolution range offered by the front end.
const (
	minResolution = 0.09
	maxResolution = 1.6
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	cfg *config.Config

	// Plane, created on the first WindowSizeMsg. Pixels are braille dots.
	view *plane.View
	ctrl *plane.Controller

	// Field and sampling settings
	field      field.Field
	threshold  float64
	resolution float64
	layers     frame.Layers
	extractor  contour.Extractor

	// last composed frame
	frame    frame.Frame
	frameErr error

	// Field picker
	l list.Model

	// settings entry
	settingsMode bool
	ta           textarea.Model

	// hover state
	hovering   bool
	hoverWorld geom.Point

	// frame statistics table
	showStats bool
	tbl       table.Model
}

// New builds the model from the configuration. The view itself is created
// once the terminal size is known.
func New(cfg *config.Config) (Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	f, err := field.Lookup(cfg.Contour.Field)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		cfg:         cfg,
		helpVisible: true,
		status:      "isoplane ready",
		field:       f,
		threshold:   cfg.Contour.ThresholdOr(f.Threshold),
		resolution:  clampf(cfg.Contour.Resolution, minResolution, maxResolution),
		layers: frame.Layers{
			Contour: cfg.Layers.ContourOn(),
			Axis:    cfg.Layers.AxisOn(),
			Dots:    cfg.Layers.DotsOn(),
			Grid:    cfg.Layers.GridOn(),
		},
		extractor: contour.Extractor{
			SaddleTolerance: cfg.Contour.SaddleTolerance,
			MaxCells:        cfg.Contour.MaxCells,
		},
	}
	// list setup
	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Fields"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	m.refreshFields()
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "resolution=0.2 threshold=3 field=heart. Enter applies; Esc cancels."
	m.ta.CharLimit = 256
	m.ta.SetWidth(50)
	m.ta.SetHeight(3)
	// stats table setup
	m.tbl = table.New(
		table.WithColumns([]table.Column{{Title: "metric", Width: 14}, {Title: "value", Width: 30}}),
		table.WithFocused(true),
	)
	m.tbl.SetHeight(14)
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

// viewOptions turns the zoom section into view options.
func (m Model) viewOptions() plane.Options {
	return plane.Options{
		ZoomFactor:    m.cfg.Zoom.Factor,
		ZoomLimitLow:  m.cfg.Zoom.LimitLow,
		ZoomLimitHigh: m.cfg.Zoom.LimitHigh,
	}
}

// resetView recreates the view at the configured window for the current
// canvas size.
func (m *Model) resetView(size geom.Size) {
	c := geom.Pt(m.cfg.View.CenterX, m.cfg.View.CenterY)
	m.view = plane.NewView(size, c, m.cfg.View.HalfWidth, m.viewOptions())
	m.ctrl = plane.NewController(m.view)
}

// router is rebuilt per event so that Claimed sees the current model.
func (m Model) router() plane.Router {
	return plane.Router{Target: m.ctrl, Claimed: m.claimed}
}

// claimed reports whether a canvas pixel is covered by a control rather
// than the plane.
func (m Model) claimed(p geom.Pixel) bool {
	if m.settingsMode || m.showStats {
		return true
	}
	s := m.view.Size()
	return p.X < 0 || p.Y < 0 || p.X >= s.W || p.Y >= s.H
}

// recompose rebuilds the frame after any change of view or settings.
func (m *Model) recompose() {
	if m.view == nil {
		return
	}
	m.frame, m.frameErr = frame.Compose(m.view, m.field.Sampler, frame.Settings{
		Threshold:  m.threshold,
		Resolution: m.resolution,
		Layers:     m.layers,
		Extractor:  m.extractor,
	})
	if m.showStats {
		m.refreshStats()
	}
}
