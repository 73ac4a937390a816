package plane

import (
	"math"
	"testing"

	"isoplane/internal/geom"
)

func newTestView() *View {
	// 1200x600 window showing 4x2 world units, as the stock demo starts.
	return NewView(geom.Size{W: 1200, H: 600}, geom.Point{}, 2, DefaultOptions())
}

func near(a, b geom.Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func TestNewView(t *testing.T) {
	v := newTestView()
	if got, want := v.Zoom(), 4.0/1200; math.Abs(got-want) > 1e-15 {
		t.Errorf("Zoom() = %v, want %v", got, want)
	}
	r := v.VisibleRect()
	if !near(r.Min, geom.Pt(-2, -1), 1e-12) || !near(r.Max, geom.Pt(2, 1), 1e-12) {
		t.Errorf("VisibleRect() = %+v, want [-2,-1]..[2,1]", r)
	}
}

func TestPixelToWorldCorners(t *testing.T) {
	v := newTestView()
	tests := []struct {
		p    geom.Pixel
		want geom.Point
	}{
		{geom.Pixel{X: 0, Y: 0}, geom.Pt(-2, -1)},
		{geom.Pixel{X: 600, Y: 300}, geom.Pt(0, 0)},
		{geom.Pixel{X: 1200, Y: 600}, geom.Pt(2, 1)},
		{geom.Pixel{X: 900, Y: 150}, geom.Pt(1, -0.5)},
	}
	for _, tt := range tests {
		if got := v.PixelToWorld(tt.p); !near(got, tt.want, 1e-12) {
			t.Errorf("PixelToWorld(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	v := newTestView()
	v.Pan(geom.Pixel{X: 37, Y: -12})
	v.ZoomAtCursor(In, geom.Pixel{X: 100, Y: 500})
	v.ZoomAtCursor(In, geom.Pixel{X: 100, Y: 500})
	for x := 0; x <= 1200; x += 7 {
		for y := 0; y <= 600; y += 11 {
			p := geom.Pixel{X: x, Y: y}
			got := v.WorldToPixel(v.PixelToWorld(p))
			if abs(got.X-p.X) > 1 || abs(got.Y-p.Y) > 1 {
				t.Fatalf("round trip %v -> %v", p, got)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestZoomInvariantAtCursor(t *testing.T) {
	cursors := []geom.Pixel{{X: 0, Y: 0}, {X: 600, Y: 300}, {X: 1199, Y: 17}, {X: 250, Y: 590}}
	for _, c := range cursors {
		v := newTestView()
		v.Pan(geom.Pixel{X: -300, Y: 45})
		before := v.PixelToWorld(c)
		for i := 0; i < 5; i++ {
			if !v.ZoomAtCursor(In, c) {
				t.Fatalf("zoom in refused at step %d", i)
			}
			if got := v.PixelToWorld(c); !near(got, before, 1e-9) {
				t.Fatalf("cursor %v drifted during zoom in: %v -> %v", c, before, got)
			}
			if !v.ZoomAtCursor(Out, c) {
				t.Fatalf("zoom out refused at step %d", i)
			}
			if got := v.PixelToWorld(c); !near(got, before, 1e-9) {
				t.Fatalf("cursor %v drifted after in/out pair: %v -> %v", c, before, got)
			}
		}
	}
}

func TestZoomScalesExtent(t *testing.T) {
	v := newTestView()
	h := v.HalfExtent()
	v.ZoomAtCursor(In, geom.Pixel{X: 600, Y: 300})
	if got := v.HalfExtent(); !near(got, h.Mul(1.1), 1e-12) {
		t.Errorf("HalfExtent after In = %v, want %v", got, h.Mul(1.1))
	}
	// Zooming at the center keeps the center.
	if !near(v.Center(), geom.Point{}, 1e-12) {
		t.Errorf("Center moved to %v", v.Center())
	}
}

func TestZoomBounds(t *testing.T) {
	opts := Options{ZoomFactor: 1.5, ZoomLimitLow: 0.001, ZoomLimitHigh: 0.02}
	v := NewView(geom.Size{W: 400, H: 400}, geom.Point{}, 2, opts)
	c := geom.Pixel{X: 13, Y: 300}
	for i := 0; i < 100; i++ {
		v.ZoomAtCursor(In, c)
		if v.Zoom() > opts.ZoomLimitHigh {
			t.Fatalf("zoom %v above high limit after %d steps", v.Zoom(), i+1)
		}
	}
	if v.ZoomAtCursor(In, c) {
		t.Fatalf("expected zoom in to be a no-op at the limit")
	}
	for i := 0; i < 100; i++ {
		v.ZoomAtCursor(Out, c)
		if v.Zoom() < opts.ZoomLimitLow {
			t.Fatalf("zoom %v below low limit after %d steps", v.Zoom(), i+1)
		}
	}
	if v.ZoomAtCursor(Out, c) {
		t.Fatalf("expected zoom out to be a no-op at the limit")
	}
}

func TestMagnifyStopsAtPrecisionLimit(t *testing.T) {
	for _, c := range []geom.Pixel{{X: 10, Y: 10}, {X: 600, Y: 300}} {
		v := newTestView()
		steps := 0
		for v.ZoomAtCursor(Out, c) {
			steps++
			if steps > 20000 {
				t.Fatalf("cursor %v: magnifying never stopped, zoom %v", c, v.Zoom())
			}
		}
		z := v.Zoom()
		if z < 0x1p-1022 {
			t.Errorf("cursor %v: zoom %v is not a normal number", c, z)
		}
		if v.ZoomAtCursor(Out, c) || v.Zoom() != z {
			t.Errorf("cursor %v: step past the limit changed the view", c)
		}
		p := geom.Pixel{X: 10, Y: 10}
		if got := v.WorldToPixel(v.PixelToWorld(p)); got != p {
			t.Errorf("cursor %v: round trip of %v gave %v at zoom %v", c, p, got, z)
		}
		if !v.ZoomAtCursor(In, c) || v.Zoom() <= z {
			t.Errorf("cursor %v: zooming back in failed", c)
		}
	}
}

func TestPan(t *testing.T) {
	v := newTestView()
	v.Pan(geom.Pixel{X: 300, Y: -150})
	want := geom.Pt(-1, 0.5)
	if got := v.Center(); !near(got, want, 1e-12) {
		t.Errorf("Center() after pan = %v, want %v", got, want)
	}
}

func TestResizeKeepsScale(t *testing.T) {
	v := newTestView()
	z := v.Zoom()
	v.Resize(geom.Size{W: 600, H: 600})
	if v.Zoom() != z {
		t.Fatalf("Resize changed zoom: %v -> %v", z, v.Zoom())
	}
	r := v.VisibleRect()
	if !near(r.Min, geom.Pt(-1, -1), 1e-12) || !near(r.Max, geom.Pt(1, 1), 1e-12) {
		t.Errorf("VisibleRect() after resize = %+v", r)
	}
	v.Resize(geom.Size{})
	if s := v.Size(); s.W != 1 || s.H != 1 {
		t.Errorf("Resize to zero gave %+v, want 1x1", s)
	}
}
