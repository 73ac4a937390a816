// Package contour reconstructs the level set of a scalar field with
// marching squares, and builds the grid overlay that shares its cell
// iteration.
//
// Each cell is sampled at its four corners and at one extra point used to
// pick a topology for saddle cells. Cells are independent: the output is a
// flat list of segments in rendering order, not stitched into polylines.
package contour

import (
	"fmt"
	"math"

	"isoplane/internal/field"
	"isoplane/internal/geom"
)

// Extractor holds the tunables of the marching squares pass. The zero
// value compares saddle samples exactly and has no cell budget.
type Extractor struct {
	// SaddleTolerance is the relative tolerance used when comparing the
	// center sample to corner 0 in a saddle cell. Zero means exact
	// equality.
	SaddleTolerance float64
	// MaxCells refuses sampling windows with more cells. Zero disables the
	// check.
	MaxCells int
}

// Stats describes one extraction pass.
type Stats struct {
	Cells    int `json:"cells"`
	Saddles  int `json:"saddles"`
	Skipped  int `json:"skipped"`
	Segments int `json:"segments"`
}

// cell is one grid square. Corners run (x,y), (x+r,y), (x+r,y+r), (x,y+r)
// in world space; values are the field samples at those corners.
type cell struct {
	corners [4]geom.Point
	values  [4]float64
	center  float64
}

// Extract samples f over rect and returns the segments approximating the
// set where f equals threshold.
func Extract(rect geom.Rect, resolution, threshold float64, f field.Sampler) ([]geom.Segment, error) {
	return Extractor{}.Extract(rect, resolution, threshold, f)
}

// Extract snaps rect to the resolution grid and marches every cell.
func (e Extractor) Extract(rect geom.Rect, resolution, threshold float64, f field.Sampler) ([]geom.Segment, error) {
	g, err := Snap(rect, resolution)
	if err != nil {
		return nil, err
	}
	segs, _, err := e.ExtractGrid(g, threshold, f)
	return segs, err
}

// ExtractGrid marches the cells of an already snapped grid.
func (e Extractor) ExtractGrid(g Grid, threshold float64, f field.Sampler) ([]geom.Segment, Stats, error) {
	if err := validResolution(g.Resolution); err != nil {
		return nil, Stats{}, err
	}
	if err := e.CheckBudget(g); err != nil {
		return nil, Stats{}, err
	}

	var (
		st   = Stats{Cells: g.Cells()}
		segs []geom.Segment
		c    cell
		half = g.Resolution / 2
	)
	for j := g.J0; j < g.J1; j++ {
		y0, y1 := g.Y(j), g.Y(j+1)
		for i := g.I0; i < g.I1; i++ {
			x0, x1 := g.X(i), g.X(i+1)
			c.corners = [4]geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
			for k, p := range c.corners {
				c.values[k] = f.Evaluate(p.X, -p.Y)
			}
			if !finite4(c.values) {
				st.Skipped++
				continue
			}
			c.center = f.Evaluate(x0+half, -(y0 - half))

			n := len(segs)
			segs = e.march(&c, threshold, segs)
			if len(segs)-n == 2 {
				st.Saddles++
			}
		}
	}
	if st.Skipped > 0 {
		Logger().Debug("cells with non-finite samples skipped", "skipped", st.Skipped, "cells", st.Cells)
	}
	st.Segments = len(segs)
	return segs, st, nil
}

// CheckBudget reports ErrTooManyCells when g exceeds MaxCells.
func (e Extractor) CheckBudget(g Grid) error {
	if e.MaxCells <= 0 {
		return nil
	}
	// Compare per axis first so the product cannot overflow.
	if g.Cols() > e.MaxCells || g.Rows() > e.MaxCells || g.Cells() > e.MaxCells {
		Logger().Warn("sampling window refused", "cols", g.Cols(), "rows", g.Rows(), "max", e.MaxCells)
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyCells, g.Cols(), g.Rows(), e.MaxCells)
	}
	return nil
}

// march appends the segments of one cell to out.
func (e Extractor) march(c *cell, threshold float64, out []geom.Segment) []geom.Segment {
	var (
		pts [4]geom.Point
		n   int
	)
	for i := 0; i < 4; i++ {
		a, b := c.values[i], c.values[(i+1)%4]
		if (a < threshold) == (b < threshold) {
			continue
		}
		t := (threshold - a) / (b - a)
		pts[n] = c.corners[i].Lerp(c.corners[(i+1)%4], t)
		n++
	}

	switch n {
	case 2:
		out = append(out, geom.Segment{A: pts[0], B: pts[1]})
	case 4:
		if e.sameSample(c.center, c.values[0]) {
			out = append(out, geom.Segment{A: pts[0], B: pts[1]}, geom.Segment{A: pts[2], B: pts[3]})
		} else {
			out = append(out, geom.Segment{A: pts[0], B: pts[3]}, geom.Segment{A: pts[1], B: pts[2]})
		}
	}
	return out
}

func (e Extractor) sameSample(a, b float64) bool {
	if e.SaddleTolerance <= 0 {
		return a == b
	}
	return math.Abs(a-b) <= e.SaddleTolerance*math.Max(math.Abs(a), math.Abs(b))
}

func finite4(v [4]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
