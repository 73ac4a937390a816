// Package frame turns a view, a field and the display settings into the
// ordered draw batches of one frame.
package frame

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"isoplane/internal/contour"
	"isoplane/internal/draw"
	"isoplane/internal/field"
	"isoplane/internal/geom"
	"isoplane/internal/plane"
)

// ErrUnknownLayer reports a layer name outside grid, axis, dots, contour.
var ErrUnknownLayer = errors.New("unknown layer")

// Layers are the display toggles.
type Layers struct {
	Contour bool
	Axis    bool
	Dots    bool
	Grid    bool
}

// AllLayers has every layer on.
func AllLayers() Layers {
	return Layers{Contour: true, Axis: true, Dots: true, Grid: true}
}

// ParseLayers reads a comma separated list such as "grid,contour". The
// empty string enables every layer; "none" enables none.
func ParseLayers(s string) (Layers, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return AllLayers(), nil
	case "none":
		return Layers{}, nil
	}
	var l Layers
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "contour":
			l.Contour = true
		case "axis":
			l.Axis = true
		case "dots":
			l.Dots = true
		case "grid":
			l.Grid = true
		default:
			return Layers{}, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
	}
	return l, nil
}

func (l Layers) String() string {
	var names []string
	for _, p := range []struct {
		on   bool
		name string
	}{{l.Grid, "grid"}, {l.Axis, "axis"}, {l.Dots, "dots"}, {l.Contour, "contour"}} {
		if p.on {
			names = append(names, p.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Settings are the per-frame inputs besides the view and the field.
type Settings struct {
	Threshold  float64
	Resolution float64
	Layers     Layers
	Extractor  contour.Extractor
}

// Stats summarises a composed frame.
type Stats struct {
	contour.Stats
	Grid    contour.Grid
	Lines   int
	Markers int
	Axes    int
}

// Frame is the output of Compose.
type Frame struct {
	Batches  []draw.Batch
	Segments []geom.Segment
	Stats    Stats
}

// Compose snaps the visible rectangle of v and builds the enabled layers
// in drawing order: grid, axis, dots, contour. The axis band is two pixels
// wide at the current zoom.
func Compose(v *plane.View, f field.Sampler, s Settings) (Frame, error) {
	g, err := contour.Snap(v.VisibleRect(), s.Resolution)
	if err != nil {
		return Frame{}, err
	}
	if s.Layers.Dots || s.Layers.Contour {
		if err := s.Extractor.CheckBudget(g); err != nil {
			return Frame{}, err
		}
	}
	// Grid lines grow with the sides, not the area.
	if n, lines := s.Extractor.MaxCells, g.Cols()+g.Rows()+2; s.Layers.Grid && n > 0 && lines > n {
		return Frame{}, fmt.Errorf("%w: %d grid lines exceed %d", contour.ErrTooManyCells, lines, n)
	}
	var (
		fr = Frame{Stats: Stats{Grid: g}}
		ov = contour.Overlay{Grid: g}
	)

	if s.Layers.Grid {
		lines := ov.GridLines()
		fr.Stats.Lines = len(lines)
		fr.Batches = append(fr.Batches, segmentBatch(draw.LayerGrid, lines, draw.Black))
	}
	if s.Layers.Axis {
		quads := ov.Axes(2 * v.Zoom())
		fr.Stats.Axes = len(quads)
		b := draw.Batch{Kind: draw.Quads, Layer: draw.LayerAxis, Vertices: make([]draw.Vertex, 0, 4*len(quads))}
		for _, q := range quads {
			for _, p := range q {
				b.Vertices = append(b.Vertices, draw.Vertex{Pos: p, Color: draw.Black})
			}
		}
		fr.Batches = append(fr.Batches, b)
	}
	if s.Layers.Dots {
		markers := ov.Markers(s.Threshold, f)
		fr.Stats.Markers = len(markers)
		b := draw.Batch{Kind: draw.Points, Layer: draw.LayerDots, Vertices: make([]draw.Vertex, 0, len(markers))}
		for _, m := range markers {
			c := draw.Red
			if m.Below {
				c = draw.Green
			}
			b.Vertices = append(b.Vertices, draw.Vertex{Pos: m.At, Color: c})
		}
		fr.Batches = append(fr.Batches, b)
	}
	if s.Layers.Contour {
		segs, st, err := s.Extractor.ExtractGrid(g, s.Threshold, f)
		if err != nil {
			return Frame{}, err
		}
		fr.Segments = segs
		fr.Stats.Stats = st
		fr.Batches = append(fr.Batches, segmentBatch(draw.LayerContour, segs, nil))
	}
	return fr, nil
}

// Render hands every batch to sink in order.
func (fr Frame) Render(sink draw.Sink, m draw.Mapper) error {
	for _, b := range fr.Batches {
		if err := sink.Draw(b, m); err != nil {
			return fmt.Errorf("draw %s: %w", b.Layer, err)
		}
	}
	return nil
}

func segmentBatch(layer draw.Layer, segs []geom.Segment, c color.Color) draw.Batch {
	b := draw.Batch{Kind: draw.Lines, Layer: layer, Vertices: make([]draw.Vertex, 0, 2*len(segs))}
	for _, s := range segs {
		b.Vertices = append(b.Vertices, draw.Vertex{Pos: s.A, Color: c}, draw.Vertex{Pos: s.B, Color: c})
	}
	return b
}
