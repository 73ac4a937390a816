package contour

import (
	"errors"
	"math"
	"testing"

	"isoplane/internal/field"
	"isoplane/internal/geom"
)

func TestMod(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{5.5, 2, 1.5},
		{-0.5, 2, 1.5},
		{-4, 2, 0},
		{0, 1, 0},
		{-7.25, 0.5, 0.25},
	}
	for _, tt := range tests {
		got := Mod(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Mod(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got < 0 || got >= tt.b {
			t.Errorf("Mod(%v, %v) = %v outside [0, %v)", tt.a, tt.b, got, tt.b)
		}
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name           string
		rect           geom.Rect
		res            float64
		i0, j0, i1, j1 int
	}{
		{"aligned", geom.R(-2, -1, 2, 1), 0.5, -4, -2, 5, 3},
		{"unaligned", geom.R(-0.3, 0.1, 0.7, 0.9), 0.5, -1, 0, 2, 2},
		{"inverted clamps to one cell", geom.R(1, 1, -1, -1), 0.5, 2, 2, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Snap(tt.rect, tt.res)
			if err != nil {
				t.Fatalf("Snap: %v", err)
			}
			if g.I0 != tt.i0 || g.J0 != tt.j0 || g.I1 != tt.i1 || g.J1 != tt.j1 {
				t.Errorf("Snap(%+v, %v) = [%d,%d)x[%d,%d), want [%d,%d)x[%d,%d)",
					tt.rect, tt.res, g.I0, g.I1, g.J0, g.J1, tt.i0, tt.i1, tt.j0, tt.j1)
			}
			if g.Cells() < 1 {
				t.Errorf("snapped grid has no cells")
			}
		})
	}
}

func TestSnapCoversRect(t *testing.T) {
	rects := []geom.Rect{
		geom.R(-2.37, -1.01, 3.9, 0.02),
		geom.R(10.001, -50.5, 12.5, -49.9),
		geom.R(-0.09, -0.09, 0.09, 0.09),
	}
	for _, r := range rects {
		for _, res := range []float64{0.09, 0.2, 0.5, 1.6} {
			g, err := Snap(r, res)
			if err != nil {
				t.Fatalf("Snap: %v", err)
			}
			s := g.Rect()
			if s.Min.X > r.Min.X+1e-9 || s.Min.Y > r.Min.Y+1e-9 || s.Max.X < r.Max.X-1e-9 || s.Max.Y < r.Max.Y-1e-9 {
				t.Errorf("Snap(%+v, %v) = %+v does not cover the rect", r, res, s)
			}
		}
	}
}

func TestSnapDegenerate(t *testing.T) {
	g, err := Snap(geom.R(math.NaN(), 0, 1, 1), 0.5)
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if g.Cells() != 1 {
		t.Errorf("non-finite rect gave %d cells, want 1", g.Cells())
	}

	_, err = Snap(geom.R(-1e300, -1, 1, 1), 0.5)
	if !errors.Is(err, ErrTooManyCells) {
		t.Errorf("expected ErrTooManyCells, got %v", err)
	}
}

func TestSnapInvalidResolution(t *testing.T) {
	for _, res := range []float64{0, -0.5, math.NaN(), math.Inf(1)} {
		if _, err := Snap(geom.R(0, 0, 1, 1), res); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("Snap with resolution %v: got %v, want ErrInvalidResolution", res, err)
		}
	}
}

// recorder remembers every x coordinate the extractor samples.
type recorder struct {
	xs map[float64]bool
}

func (r *recorder) Evaluate(x, y float64) float64 {
	r.xs[x] = true
	return x*x + y*y
}

func sampledXs(t *testing.T, rect geom.Rect, res float64) map[float64]bool {
	t.Helper()
	r := &recorder{xs: map[float64]bool{}}
	if _, err := Extract(rect, res, 1, r); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return r.xs
}

func TestGridStableUnderPanning(t *testing.T) {
	for _, res := range []float64{0.09, 0.1, 0.2, 0.37, 1.6} {
		for _, off := range []float64{-3.3, -0.123456, 0, 0.3, 7.77} {
			rect := geom.R(off, -1, off+2, 1)
			a := sampledXs(t, rect, res)
			b := sampledXs(t, geom.R(off+res, -1, off+2+res, 1), res)

			lo, hi := math.Inf(1), math.Inf(-1)
			for x := range a {
				lo, hi = math.Min(lo, x), math.Max(hi, x)
			}
			shared := 0
			for x := range b {
				if x < lo || x > hi {
					continue
				}
				shared++
				if !a[x] {
					t.Fatalf("res=%v off=%v: x=%v sampled after panning but not before", res, off, x)
				}
			}
			if shared == 0 {
				t.Fatalf("res=%v off=%v: no overlap between the two sampling grids", res, off)
			}
		}
	}
}

func TestExtractorBudget(t *testing.T) {
	e := Extractor{MaxCells: 10}
	_, err := e.Extract(geom.R(-10, -10, 10, 10), 0.5, 1, field.Func(func(x, y float64) float64 { return x }))
	if !errors.Is(err, ErrTooManyCells) {
		t.Fatalf("expected ErrTooManyCells, got %v", err)
	}
}
