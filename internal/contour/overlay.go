package contour

import (
	"isoplane/internal/field"
	"isoplane/internal/geom"
)

// Quad is four corners in drawing order.
type Quad [4]geom.Point

// Marker is a grid node classified against the threshold.
type Marker struct {
	At    geom.Point
	Below bool
}

// Overlay builds the reference geometry drawn under the contour: grid
// lines, axis bands and classified node markers. Grid lines and markers
// cover every node of the snapped grid, edges included.
type Overlay struct {
	Grid Grid
}

// GridLines returns one vertical line per node column followed by one
// horizontal line per node row, each spanning the snapped rectangle.
func (o Overlay) GridLines() []geom.Segment {
	g := o.Grid
	r := g.Rect()
	out := make([]geom.Segment, 0, g.Cols()+g.Rows()+2)
	for i := g.I0; i <= g.I1; i++ {
		x := g.X(i)
		out = append(out, geom.Segment{A: geom.Pt(x, r.Min.Y), B: geom.Pt(x, r.Max.Y)})
	}
	for j := g.J0; j <= g.J1; j++ {
		y := g.Y(j)
		out = append(out, geom.Segment{A: geom.Pt(r.Min.X, y), B: geom.Pt(r.Max.X, y)})
	}
	return out
}

// Axes returns a band of the given half width around x = 0 and y = 0 for
// each axis the snapped rectangle straddles.
func (o Overlay) Axes(halfWidth float64) []Quad {
	r := o.Grid.Rect()
	var out []Quad
	if (r.Min.X < 0) != (r.Max.X < 0) {
		out = append(out, Quad{
			geom.Pt(-halfWidth, r.Min.Y),
			geom.Pt(+halfWidth, r.Min.Y),
			geom.Pt(+halfWidth, r.Max.Y),
			geom.Pt(-halfWidth, r.Max.Y),
		})
	}
	if (r.Min.Y < 0) != (r.Max.Y < 0) {
		out = append(out, Quad{
			geom.Pt(r.Min.X, -halfWidth),
			geom.Pt(r.Min.X, +halfWidth),
			geom.Pt(r.Max.X, +halfWidth),
			geom.Pt(r.Max.X, -halfWidth),
		})
	}
	return out
}

// Markers samples f at every node and classifies it with the same
// value < threshold rule the extractor uses.
func (o Overlay) Markers(threshold float64, f field.Sampler) []Marker {
	g := o.Grid
	out := make([]Marker, 0, (g.Cols()+1)*(g.Rows()+1))
	for j := g.J0; j <= g.J1; j++ {
		for i := g.I0; i <= g.I1; i++ {
			p := g.Node(i, j)
			out = append(out, Marker{At: p, Below: f.Evaluate(p.X, -p.Y) < threshold})
		}
	}
	return out
}
