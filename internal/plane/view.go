// Package plane owns the visible window onto the world plane: the mapping
// between viewport pixels and world coordinates, panning, and zooming
// anchored at the cursor.
package plane

import (
	"math"

	"isoplane/internal/geom"
)

// Direction selects the zoom step. In multiplies the zoom factor (world
// units per pixel) by Options.ZoomFactor, so the visible window grows; Out
// divides it.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Options bound and size the zoom steps.
type Options struct {
	ZoomFactor    float64
	ZoomLimitLow  float64
	ZoomLimitHigh float64
}

// DefaultOptions mirrors the stock settings: 10% per step, factor kept
// within [0, 10000].
func DefaultOptions() Options {
	return Options{ZoomFactor: 1.1, ZoomLimitLow: 0, ZoomLimitHigh: 10000}
}

// View is the visible world rectangle plus the cumulative zoom factor.
// It is not safe for concurrent use; input handlers mutate it between
// frames.
type View struct {
	size   geom.Size
	center geom.Point
	half   geom.Point
	zoom   float64
	opts   Options
}

// NewView creates a view of the given viewport size centered on center
// and halfWidth world units wide on each side. The vertical extent follows
// from the viewport aspect so that pixels are square.
func NewView(size geom.Size, center geom.Point, halfWidth float64, opts Options) *View {
	size = clampSize(size)
	if !(halfWidth > 0) {
		halfWidth = 1
	}
	v := &View{
		size:   size,
		center: center,
		zoom:   2 * halfWidth / float64(size.W),
		opts:   opts,
	}
	v.half = v.halfFor(size)
	return v
}

func clampSize(s geom.Size) geom.Size {
	if s.W < 1 {
		s.W = 1
	}
	if s.H < 1 {
		s.H = 1
	}
	return s
}

func (v *View) halfFor(s geom.Size) geom.Point {
	return geom.Point{X: v.zoom * float64(s.W) / 2, Y: v.zoom * float64(s.H) / 2}
}

func (v *View) Size() geom.Size        { return v.size }
func (v *View) Center() geom.Point     { return v.center }
func (v *View) HalfExtent() geom.Point { return v.half }
func (v *View) Zoom() float64          { return v.zoom }
func (v *View) Options() Options       { return v.opts }

// VisibleRect returns center ± halfExtent.
func (v *View) VisibleRect() geom.Rect {
	return geom.Rect{Min: v.center.Sub(v.half), Max: v.center.Add(v.half)}
}

// Resize adapts the view to a new viewport size, keeping the center and
// the zoom factor.
func (v *View) Resize(s geom.Size) {
	v.size = clampSize(s)
	v.half = v.halfFor(v.size)
}

// PixelToWorld maps a viewport pixel to the world point drawn there.
func (v *View) PixelToWorld(p geom.Pixel) geom.Point {
	nx := -1 + 2*float64(p.X)/float64(v.size.W)
	ny := -1 + 2*float64(p.Y)/float64(v.size.H)
	return geom.Point{X: v.center.X + nx*v.half.X, Y: v.center.Y + ny*v.half.Y}
}

// WorldToPixelF is the unrounded inverse of PixelToWorld.
func (v *View) WorldToPixelF(w geom.Point) (float64, float64) {
	x := ((w.X-v.center.X)/v.half.X + 1) * float64(v.size.W) / 2
	y := ((w.Y-v.center.Y)/v.half.Y + 1) * float64(v.size.H) / 2
	return x, y
}

// WorldToPixel maps a world point to the nearest viewport pixel.
func (v *View) WorldToPixel(w geom.Point) geom.Pixel {
	x, y := v.WorldToPixelF(w)
	return geom.Pixel{X: int(math.Round(x)), Y: int(math.Round(y))}
}

// Pan moves the window by a pixel delta. Dragging right moves the visible
// window left, so the delta is subtracted.
func (v *View) Pan(delta geom.Pixel) {
	v.center = v.center.Sub(geom.Point{X: float64(delta.X), Y: float64(delta.Y)}.Mul(v.zoom))
}

// ZoomAtCursor applies one zoom step while keeping the world point under
// cursor fixed. A step that would leave [ZoomLimitLow, ZoomLimitHigh] is
// dropped; the result reports whether the view changed.
func (v *View) ZoomAtCursor(dir Direction, cursor geom.Pixel) bool {
	step := v.opts.ZoomFactor
	if dir == Out {
		step = 1 / step
	}
	next := v.zoom * step
	if next > v.opts.ZoomLimitHigh || next < v.opts.ZoomLimitLow || next == v.zoom {
		return false
	}
	if next < v.zoom && !v.resolvable(next) {
		return false
	}

	before := v.PixelToWorld(cursor)
	v.zoom = next
	v.half = v.half.Mul(step)
	after := v.PixelToWorld(cursor)
	v.center = v.center.Add(before.Sub(after))
	return true
}

// minPixelBits is how many bits of a world coordinate near the center a
// single pixel must still span.
const minPixelBits = 0x1p-40

// resolvable reports whether a pixel at zoom z is still a distinct world
// step around the current center. Past that point pixel/world mapping
// collapses, so magnification stops there even with a zero low limit.
func (v *View) resolvable(z float64) bool {
	if !(z >= 0x1p-1022) {
		return false
	}
	c := math.Max(math.Abs(v.center.X), math.Abs(v.center.Y))
	return z >= c*minPixelBits
}
