package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"isoplane/internal/draw"
	"isoplane/internal/field"
	"isoplane/internal/frame"
	"isoplane/internal/geom"
	"isoplane/internal/plane"
)

func renderCircle(t *testing.T, layers frame.Layers) image.Image {
	t.Helper()
	size := geom.Size{W: 200, H: 100}
	v := plane.NewView(size, geom.Pt(0, 0), 2, plane.DefaultOptions())
	f, err := field.Lookup("circle")
	if err != nil {
		t.Fatal(err)
	}
	fr, err := frame.Compose(v, f.Sampler, frame.Settings{Threshold: 1, Resolution: 0.1, Layers: layers})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	data, err := NewRenderer(DefaultConfig()).Render(fr, v, size)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != size.W || b.Dy() != size.H {
		t.Fatalf("image is %v, want %dx%d", b, size.W, size.H)
	}
	return img
}

func rgb(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRenderContour(t *testing.T) {
	img := renderCircle(t, frame.Layers{Contour: true})

	if r, g, b := rgb(img.At(0, 0)); r != 50 || g != 40 || b != 80 {
		t.Errorf("corner pixel = (%d,%d,%d), want the background", r, g, b)
	}
	bright := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if r, g, _ := rgb(img.At(x, y)); r > 120 && g > 120 {
				bright++
			}
		}
	}
	if bright == 0 {
		t.Error("no contour pixels drawn")
	}
	// The unit circle spans 50 px either side of the center.
	if r, _, _ := rgb(img.At(100, 50)); r != 50 {
		t.Errorf("center pixel is not background: r=%d", r)
	}
}

func TestRenderAxis(t *testing.T) {
	img := renderCircle(t, frame.Layers{Axis: true})
	if r, g, b := rgb(img.At(100, 10)); r != 0 || g != 0 || b != 0 {
		t.Errorf("pixel on the y axis = (%d,%d,%d), want black", r, g, b)
	}
	if r, _, _ := rgb(img.At(20, 10)); r != 50 {
		t.Errorf("pixel off both axes is not background: r=%d", r)
	}
}

func TestRenderBadSize(t *testing.T) {
	v := plane.NewView(geom.Size{W: 10, H: 10}, geom.Pt(0, 0), 1, plane.DefaultOptions())
	if _, err := NewRenderer(DefaultConfig()).Render(frame.Frame{}, v, geom.Size{}); err == nil {
		t.Error("expected an error for an empty size")
	}
}

func TestCanvasRejectsBadBatch(t *testing.T) {
	v := plane.NewView(geom.Size{W: 10, H: 10}, geom.Pt(0, 0), 1, plane.DefaultOptions())
	r := NewRenderer(DefaultConfig())
	fr := frame.Frame{Batches: []draw.Batch{{Kind: draw.Lines, Vertices: []draw.Vertex{{}}}}}
	if _, err := r.Render(fr, v, geom.Size{W: 10, H: 10}); !errors.Is(err, draw.ErrBadBatch) {
		t.Errorf("got %v, want ErrBadBatch", err)
	}
}
