package contour

import (
	"errors"
	"fmt"
	"math"

	"isoplane/internal/geom"
)

var (
	// ErrInvalidResolution reports a sampling step that is not a positive
	// finite number. It is a configuration error and is never retried.
	ErrInvalidResolution = errors.New("invalid resolution")
	// ErrTooManyCells reports a sampling window larger than the configured
	// cell budget.
	ErrTooManyCells = errors.New("too many cells")
)

// Mod is a modulo that always lands in [0, b), also for negative a.
func Mod(a, b float64) float64 {
	return math.Mod(math.Mod(a, b)+b, b)
}

// Grid is a rectangle snapped to multiples of Resolution. Node (i, j) sits
// at (i*Resolution, j*Resolution); cells span node indices [I0, I1) by
// [J0, J1).
type Grid struct {
	Resolution float64
	I0, J0     int
	I1, J1     int
}

func (g Grid) X(i int) float64 { return float64(i) * g.Resolution }
func (g Grid) Y(j int) float64 { return float64(j) * g.Resolution }

func (g Grid) Cols() int  { return g.I1 - g.I0 }
func (g Grid) Rows() int  { return g.J1 - g.J0 }
func (g Grid) Cells() int { return g.Cols() * g.Rows() }

// Node returns the world position of node (i, j).
func (g Grid) Node(i, j int) geom.Point {
	return geom.Point{X: g.X(i), Y: g.Y(j)}
}

// Rect returns the snapped world rectangle.
func (g Grid) Rect() geom.Rect {
	return geom.Rect{Min: g.Node(g.I0, g.J0), Max: g.Node(g.I1, g.J1)}
}

func validResolution(r float64) error {
	if !(r > 0) || math.IsInf(r, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, r)
	}
	return nil
}

// Snap aligns rect outward to multiples of resolution. The top-left corner
// moves to the multiple at or before it, the bottom-right corner to the
// first multiple strictly past it. A rectangle with no cells left after
// snapping is clamped to a single cell.
func Snap(rect geom.Rect, resolution float64) (Grid, error) {
	if err := validResolution(resolution); err != nil {
		return Grid{}, err
	}
	g := Grid{Resolution: resolution}
	if !rect.Min.Finite() || !rect.Max.Finite() {
		Logger().Debug("non-finite viewport clamped", "rect", rect)
		g.I1, g.J1 = 1, 1
		return g, nil
	}

	for _, v := range []float64{rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y} {
		if math.Abs(v/resolution) > maxIndex {
			return Grid{}, fmt.Errorf("%w: coordinate %v at resolution %v", ErrTooManyCells, v, resolution)
		}
	}

	g.I0 = index(rect.Min.X-Mod(rect.Min.X, resolution), resolution)
	g.J0 = index(rect.Min.Y-Mod(rect.Min.Y, resolution), resolution)
	g.I1 = index(rect.Max.X-Mod(rect.Max.X, resolution)+resolution, resolution)
	g.J1 = index(rect.Max.Y-Mod(rect.Max.Y, resolution)+resolution, resolution)

	if g.I1 <= g.I0 || g.J1 <= g.J0 {
		Logger().Debug("degenerate viewport clamped", "rect", rect, "resolution", resolution)
		g.I1 = max(g.I1, g.I0+1)
		g.J1 = max(g.J1, g.J0+1)
	}
	return g, nil
}

// maxIndex keeps node indices well inside int and float64 precision.
const maxIndex = 1 << 40

// index converts a coordinate that is already a multiple of r back into
// its integer index, absorbing the rounding error of the subtraction.
func index(v, r float64) int {
	return int(math.Round(v / r))
}
