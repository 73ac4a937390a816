// Package raster renders frames to PNG using fogleman/gg.
package raster

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"isoplane/internal/draw"
	"isoplane/internal/frame"
	"isoplane/internal/geom"
)

// Config contains renderer configuration.
type Config struct {
	Background color.Color
	Foreground color.Color
	LineWidth  float64
	PointSize  float64
}

// DefaultConfig matches the interactive window: white contour on a dark
// violet background.
func DefaultConfig() Config {
	return Config{
		Background: draw.Background,
		Foreground: draw.White,
		LineWidth:  1.5,
		PointSize:  2,
	}
}

// Renderer draws frames onto pooled gg contexts. It is safe for
// concurrent use.
type Renderer struct {
	config     Config
	contexts   sync.Map // geom.Size -> *sync.Pool of *gg.Context
	bufferPool sync.Pool
}

// NewRenderer creates a new frame renderer.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		config: cfg,
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 64*1024))
			},
		},
	}
}

func (r *Renderer) pool(size geom.Size) *sync.Pool {
	if p, ok := r.contexts.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := r.contexts.LoadOrStore(size, &sync.Pool{
		New: func() interface{} {
			return gg.NewContext(size.W, size.H)
		},
	})
	return p.(*sync.Pool)
}

// Render draws fr at the given pixel size and returns PNG bytes.
func (r *Renderer) Render(fr frame.Frame, m draw.Mapper, size geom.Size) ([]byte, error) {
	if size.W < 1 || size.H < 1 {
		return nil, fmt.Errorf("render: bad size %dx%d", size.W, size.H)
	}
	p := r.pool(size)
	dc := p.Get().(*gg.Context)
	defer p.Put(dc)

	dc.SetColor(r.config.Background)
	dc.Clear()

	if err := fr.Render(NewCanvas(dc, r.config), m); err != nil {
		return nil, err
	}
	return r.encodeContext(dc)
}

func (r *Renderer) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	// The buffer goes back to the pool, so hand out a copy.
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Canvas adapts a gg context to draw.Sink.
type Canvas struct {
	dc     *gg.Context
	config Config
}

// NewCanvas wraps dc for drawing batches.
func NewCanvas(dc *gg.Context, cfg Config) *Canvas {
	return &Canvas{dc: dc, config: cfg}
}

func (c *Canvas) color(v draw.Vertex) color.Color {
	if v.Color == nil {
		return c.config.Foreground
	}
	return v.Color
}

// Draw implements draw.Sink.
func (c *Canvas) Draw(b draw.Batch, m draw.Mapper) error {
	if err := b.Validate(); err != nil {
		return err
	}
	dc := c.dc
	vs := b.Vertices
	switch b.Kind {
	case draw.Lines:
		dc.SetLineWidth(c.config.LineWidth)
		for i := 0; i < len(vs); i += 2 {
			x0, y0 := m.WorldToPixelF(vs[i].Pos)
			x1, y1 := m.WorldToPixelF(vs[i+1].Pos)
			dc.SetColor(c.color(vs[i]))
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
		}
	case draw.Quads:
		for i := 0; i < len(vs); i += 4 {
			for k := 0; k < 4; k++ {
				x, y := m.WorldToPixelF(vs[i+k].Pos)
				if k == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
			dc.SetColor(c.color(vs[i]))
			dc.Fill()
		}
	case draw.Points:
		for _, v := range vs {
			x, y := m.WorldToPixelF(v.Pos)
			dc.SetColor(c.color(v))
			dc.DrawPoint(x, y, c.config.PointSize)
			dc.Fill()
		}
	default:
		return fmt.Errorf("%w: unsupported kind %s", draw.ErrBadBatch, b.Kind)
	}
	return nil
}
