// Package draw is the contract between frame composition and the backends
// that put pixels somewhere: the terminal canvas and the PNG renderer.
package draw

import (
	"errors"
	"fmt"
	"image/color"

	"isoplane/internal/geom"
)

// ErrBadBatch reports a vertex list that does not split into whole
// primitives of its kind.
var ErrBadBatch = errors.New("malformed batch")

// Kind tells a sink how to group vertices.
type Kind int

const (
	Lines  Kind = iota // pairs of vertices
	Quads              // four vertices, filled
	Points             // single vertices
)

func (k Kind) String() string {
	switch k {
	case Lines:
		return "lines"
	case Quads:
		return "quads"
	case Points:
		return "points"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Stride is the number of vertices per primitive.
func (k Kind) Stride() int {
	switch k {
	case Lines:
		return 2
	case Quads:
		return 4
	}
	return 1
}

// Layer names what a batch shows. Sinks may style or skip by layer.
type Layer int

const (
	LayerGrid Layer = iota
	LayerAxis
	LayerDots
	LayerContour
)

func (l Layer) String() string {
	switch l {
	case LayerGrid:
		return "grid"
	case LayerAxis:
		return "axis"
	case LayerDots:
		return "dots"
	case LayerContour:
		return "contour"
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// Vertex is a world position with an optional color. A nil Color means
// the sink's foreground.
type Vertex struct {
	Pos   geom.Point
	Color color.Color
}

// Batch is an ordered run of primitives of one kind.
type Batch struct {
	Kind     Kind
	Layer    Layer
	Vertices []Vertex
}

// Validate checks that the vertex count is a whole number of primitives.
func (b Batch) Validate() error {
	if n := len(b.Vertices); n%b.Kind.Stride() != 0 {
		return fmt.Errorf("%w: %d vertices for %s", ErrBadBatch, n, b.Kind)
	}
	return nil
}

// Mapper converts world positions to fractional device pixels.
// *plane.View satisfies it.
type Mapper interface {
	WorldToPixelF(p geom.Point) (float64, float64)
}

// Sink consumes batches in order. Later batches paint over earlier ones.
type Sink interface {
	Draw(b Batch, m Mapper) error
}

// Colors used by the frame layers.
var (
	Background = color.RGBA{R: 50, G: 40, B: 80, A: 255}
	Black      = color.RGBA{A: 255}
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green      = color.RGBA{G: 255, A: 255}
	Red        = color.RGBA{R: 255, A: 255}
)
