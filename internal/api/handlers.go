package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"isoplane/internal/cache"
	"isoplane/internal/config"
	"isoplane/internal/contour"
	"isoplane/internal/field"
	"isoplane/internal/frame"
	"isoplane/internal/geom"
	"isoplane/internal/plane"
	"isoplane/internal/raster"
)

type handlers struct {
	cfg      *config.Config
	cache    *cache.Manager
	renderer *raster.Renderer
	log      *slog.Logger
}

// errBadParam marks query parameter problems; they map to 400.
var errBadParam = errors.New("bad parameter")

type fieldInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
}

func (h *handlers) listFields(w http.ResponseWriter, r *http.Request) {
	all := field.All()
	out := make([]fieldInfo, 0, len(all))
	for _, f := range all {
		out = append(out, fieldInfo{Name: f.Name, Description: f.Description, Threshold: f.Threshold})
	}
	writeJSON(w, map[string]interface{}{
		"default": h.cfg.Contour.Field,
		"fields":  out,
	})
}

type contourResponse struct {
	Field      string        `json:"field"`
	Threshold  float64       `json:"threshold"`
	Resolution float64       `json:"resolution"`
	Bounds     [4]float64    `json:"bounds"`
	Stats      contour.Stats `json:"stats"`
	Segments   [][4]float64  `json:"segments"`
}

// getContour returns the segments over a world rectangle. Coordinates use
// the plane convention: y grows downward and the field is evaluated at
// (x, -y), so miny is the top edge. Without bounds the rectangle is the
// configured view at the export aspect ratio.
func (h *handlers) getContour(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := h.lookupField(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	p := params{q: q}
	threshold := p.floatValue("threshold", h.cfg.Contour.ThresholdOr(f.Threshold))
	resolution := p.floatValue("resolution", h.cfg.Contour.Resolution)
	cx, cy := h.cfg.View.CenterX, h.cfg.View.CenterY
	halfW := h.cfg.View.HalfWidth
	halfH := halfW * float64(h.cfg.Export.Height) / float64(max(h.cfg.Export.Width, 1))
	minX := p.floatValue("minx", cx-halfW)
	minY := p.floatValue("miny", cy-halfH)
	maxX := p.floatValue("maxx", cx+halfW)
	maxY := p.floatValue("maxy", cy+halfH)
	if p.err != nil {
		h.fail(w, p.err)
		return
	}

	key := cache.ContourKey(f.Name, threshold, resolution, minX, minY, maxX, maxY)
	if h.cache != nil {
		if data, ok := h.cache.GetQuery(key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, "application/json", data)
			return
		}
	}

	g, err := contour.Snap(geom.R(minX, minY, maxX, maxY), resolution)
	if err != nil {
		h.fail(w, err)
		return
	}
	segs, st, err := h.extractor().ExtractGrid(g, threshold, f.Sampler)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := contourResponse{
		Field:      f.Name,
		Threshold:  threshold,
		Resolution: resolution,
		Stats:      st,
		Segments:   make([][4]float64, 0, len(segs)),
	}
	sr := g.Rect()
	resp.Bounds = [4]float64{sr.Min.X, sr.Min.Y, sr.Max.X, sr.Max.Y}
	for _, s := range segs {
		resp.Segments = append(resp.Segments, [4]float64{s.A.X, s.A.Y, s.B.X, s.B.Y})
	}

	data, err := json.Marshal(resp)
	if err != nil {
		h.fail(w, err)
		return
	}
	if h.cache != nil {
		h.cache.SetQuery(key, data)
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, "application/json", data)
}

func (h *handlers) getFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := h.lookupField(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	layers, err := frame.ParseLayers(q.Get("layers"))
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", errBadParam, err))
		return
	}
	p := params{q: q}
	width := p.intValue("w", h.cfg.Export.Width)
	height := p.intValue("h", h.cfg.Export.Height)
	threshold := p.floatValue("threshold", h.cfg.Contour.ThresholdOr(f.Threshold))
	resolution := p.floatValue("resolution", h.cfg.Contour.Resolution)
	cx := p.floatValue("cx", h.cfg.View.CenterX)
	cy := p.floatValue("cy", h.cfg.View.CenterY)
	scale := p.floatValue("scale", 2*h.cfg.View.HalfWidth/float64(max(width, 1)))
	if p.err != nil {
		h.fail(w, p.err)
		return
	}
	maxSize := h.cfg.Server.MaxFrameSize
	if width < 1 || height < 1 || width > maxSize || height > maxSize {
		h.fail(w, fmt.Errorf("%w: frame size %dx%d outside [1, %d]", errBadParam, width, height, maxSize))
		return
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		h.fail(w, fmt.Errorf("%w: scale must be a positive number", errBadParam))
		return
	}

	key := cache.FrameKey(f.Name, threshold, resolution, cx, cy, scale, width, height, layers.String())
	if h.cache != nil {
		if data, ok := h.cache.GetFrame(key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, "image/png", data)
			return
		}
	}

	size := geom.Size{W: width, H: height}
	v := plane.NewView(size, geom.Pt(cx, cy), scale*float64(width)/2, h.viewOptions())
	fr, err := frame.Compose(v, f.Sampler, frame.Settings{
		Threshold:  threshold,
		Resolution: resolution,
		Layers:     layers,
		Extractor:  h.extractor(),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	data, err := h.renderer.Render(fr, v, size)
	if err != nil {
		h.fail(w, err)
		return
	}
	if h.cache != nil {
		if err := h.cache.SetFrame(key, data); err != nil {
			h.log.Warn("frame not cached", "key", key, "err", err)
		}
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, "image/png", data)
}

func (h *handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cache.Stats())
}

func (h *handlers) lookupField(q url.Values) (field.Field, error) {
	name := q.Get("field")
	if name == "" {
		name = h.cfg.Contour.Field
	}
	f, err := field.Lookup(name)
	if err != nil {
		return field.Field{}, fmt.Errorf("%w: %w", errBadParam, err)
	}
	return f, nil
}

func (h *handlers) extractor() contour.Extractor {
	return contour.Extractor{
		SaddleTolerance: h.cfg.Contour.SaddleTolerance,
		MaxCells:        h.cfg.Contour.MaxCells,
	}
}

func (h *handlers) viewOptions() plane.Options {
	return plane.Options{
		ZoomFactor:    h.cfg.Zoom.Factor,
		ZoomLimitLow:  h.cfg.Zoom.LimitLow,
		ZoomLimitHigh: h.cfg.Zoom.LimitHigh,
	}
}

// fail maps engine and parameter errors to 400 and anything else to 500.
func (h *handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadParam),
		errors.Is(err, contour.ErrInvalidResolution),
		errors.Is(err, contour.ErrTooManyCells):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// params parses optional numeric query values, keeping the first error.
type params struct {
	q   url.Values
	err error
}

func (p *params) floatValue(name string, def float64) float64 {
	s := p.q.Get(name)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = fmt.Errorf("%w: %s=%q is not a finite number", errBadParam, name, s)
		return def
	}
	return v
}

func (p *params) intValue(name string, def int) int {
	s := p.q.Get(name)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("%w: %s=%q is not an integer", errBadParam, name, s)
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
