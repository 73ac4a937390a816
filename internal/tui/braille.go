package tui

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"isoplane/internal/draw"
	"isoplane/internal/geom"
)

// brailleBuf is a micro-pixel canvas: each terminal cell holds a 2x4 dot
// braille glyph and one color. The view works in micro-pixels, which are
// close to square on common terminal fonts.
type brailleBuf struct {
	w, h int             // in cells
	m    [][]uint8       // per-cell 8-bit mask
	c    [][]color.Color // per-cell color, last writer wins; nil is foreground
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	c := make([][]color.Color, h)
	for i := range m {
		m[i] = make([]uint8, w)
		c[i] = make([]color.Color, w)
	}
	return &brailleBuf{w: w, h: h, m: m, c: c}
}

// microSize is the canvas size in micro-pixels.
func (b *brailleBuf) microSize() geom.Size {
	return geom.Size{W: b.w * 2, H: b.h * 4}
}

// dotBits maps (column, row) inside a cell to the braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, c color.Color) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[mx%2][my%4]
	b.c[cy][cx] = c
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolyMicro fills a closed polygon with the even-odd rule, one
// micro-pixel scanline at a time.
func (b *brailleBuf) fillPolyMicro(pts [][2]int, c color.Color) {
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(pts); i++ {
			a := pts[i]
			e := pts[(i+1)%len(pts)]
			if a[1] == e[1] { // horizontal edge: skip
				continue
			}
			y0, y1 := a[1], e[1]
			x0, x1 := a[0], e[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= min(xs[i+1], b.w*2-1); xMic++ {
				b.setPixel(xMic, yMic, c)
			}
		}
	}
}

// Draw implements draw.Sink on the micro grid.
func (b *brailleBuf) Draw(batch draw.Batch, m draw.Mapper) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	vs := batch.Vertices
	switch batch.Kind {
	case draw.Lines:
		for i := 0; i < len(vs); i += 2 {
			x0, y0 := micro(m, vs[i].Pos)
			x1, y1 := micro(m, vs[i+1].Pos)
			if !onCanvas(x0, y0, x1, y1, b.microSize()) {
				continue
			}
			b.drawLineMicro(x0, y0, x1, y1, vs[i].Color)
		}
	case draw.Quads:
		for i := 0; i < len(vs); i += 4 {
			var poly [][2]int
			for k := 0; k < 4; k++ {
				x, y := micro(m, vs[i+k].Pos)
				poly = append(poly, [2]int{x, y})
			}
			b.fillPolyMicro(poly, vs[i].Color)
		}
	case draw.Points:
		for _, v := range vs {
			x, y := micro(m, v.Pos)
			b.setPixel(x, y, v.Color)
		}
	}
	return nil
}

// micro rounds a world position to a micro-pixel, saturating far
// off-screen values so the integer conversion stays defined.
func micro(m draw.Mapper, p geom.Point) (int, int) {
	x, y := m.WorldToPixelF(p)
	const lim = 1 << 20
	clamp := func(v float64) int {
		switch {
		case math.IsNaN(v):
			return -lim
		case v < -lim:
			return -lim
		case v > lim:
			return lim
		}
		return int(v)
	}
	return clamp(x), clamp(y)
}

// onCanvas rejects lines whose bounding box misses the canvas so that
// Bresenham never walks long runs of invisible pixels.
func onCanvas(x0, y0, x1, y1 int, s geom.Size) bool {
	if max(x0, x1) < 0 || max(y0, y1) < 0 {
		return false
	}
	return min(x0, x1) < s.W && min(y0, y1) < s.H
}

// toLines renders the canvas row by row.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		out[y] = b.renderRow(y, 0, b.w)
	}
	return out
}

// renderRow renders cells [from, to) of row y, styling each run of equally
// colored glyphs once.
func (b *brailleBuf) renderRow(y, from, to int) string {
	var (
		sb    strings.Builder
		run   []rune
		runC  color.Color
		blank = true
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		if blank {
			sb.WriteString(string(run))
		} else {
			sb.WriteString(cellStyle(runC).Render(string(run)))
		}
		run = run[:0]
	}
	for x := from; x < to; x++ {
		mask := b.m[y][x]
		isBlank := mask == 0
		c := b.c[y][x]
		if len(run) > 0 && (isBlank != blank || (!isBlank && c != runC)) {
			flush()
		}
		blank, runC = isBlank, c
		if isBlank {
			run = append(run, ' ')
		} else {
			run = append(run, rune(0x2800+int(mask)))
		}
	}
	flush()
	return sb.String()
}

// plain renders the glyphs without styling.
func (b *brailleBuf) plain() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			if mask := b.m[y][x]; mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

func cellStyle(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(termColor(c))
}
