// Package geom holds the plain coordinate types shared by the view, the
// contour engine and the drawing sinks.
//
// World coordinates follow the screen convention: y grows downward. The
// function domain is y-up, so samplers are always evaluated at (x, -y).
package geom

import "math"

// Point is a coordinate in world space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point   { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Lerp returns p + t*(q-p).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + t*(q.X-p.X), Y: p.Y + t*(q.Y-p.Y)}
}

// Finite reports whether both components are neither NaN nor infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Pixel is a device pixel; origin top-left, y down.
type Pixel struct {
	X, Y int
}

func (p Pixel) Sub(q Pixel) Pixel { return Pixel{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a viewport size in pixels.
type Size struct {
	W, H int
}

// Rect is an axis-aligned world rectangle. Min is the top-left corner and
// Max the bottom-right one.
type Rect struct {
	Min, Max Point
}

// R builds a rectangle from its top-left and bottom-right corners.
func R(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Point{X: minX, Y: minY}, Max: Point{X: maxX, Y: maxY}}
}

// Segment is one piece of a reconstructed contour inside one cell.
type Segment struct {
	A, B Point
}
