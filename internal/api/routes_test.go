package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"isoplane/internal/cache"
	"isoplane/internal/config"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cm, err := cache.NewManager(cache.Config{FrameCacheSizeMB: 8, FrameTTL: time.Minute, QueryCacheSize: 16})
	if err != nil {
		t.Fatalf("Failed to initialize cache: %v", err)
	}
	t.Cleanup(func() { cm.Close() })
	return NewRouter(RouterConfig{Config: config.DefaultConfig(), Cache: cm})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestFields(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/fields")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Default string      `json:"default"`
		Fields  []fieldInfo `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Default != "heart" {
		t.Errorf("default field = %q", resp.Default)
	}
	found := false
	for _, f := range resp.Fields {
		if f.Name == "heart" && f.Threshold == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("heart field missing from %+v", resp.Fields)
	}
}

func TestContour(t *testing.T) {
	h := newTestRouter(t)
	target := "/api/contour?field=circle&threshold=1&resolution=0.5&minx=-2&miny=-2&maxx=2&maxy=2"

	rec := get(t, h, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first request X-Cache = %q", got)
	}
	var resp contourResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Segments) == 0 || resp.Stats.Segments != len(resp.Segments) {
		t.Errorf("segments %d, stats %+v", len(resp.Segments), resp.Stats)
	}
	if resp.Bounds != [4]float64{-2, -2, 2.5, 2.5} {
		t.Errorf("bounds = %v", resp.Bounds)
	}

	again := get(t, h, target)
	if got := again.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second request X-Cache = %q", got)
	}
	if !bytes.Equal(again.Body.Bytes(), rec.Body.Bytes()) {
		t.Error("cached body differs")
	}
}

func TestContourDefaultBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.View.CenterX, cfg.View.CenterY = 1, -1
	cfg.Export.Width, cfg.Export.Height = 400, 400
	h := NewRouter(RouterConfig{Config: cfg})

	rec := get(t, h, "/api/contour?field=circle&threshold=1&resolution=0.5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp contourResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Square export, half width 2 around (1, -1), snapped outward.
	if resp.Bounds != [4]float64{-1, -3, 3.5, 1.5} {
		t.Errorf("bounds = %v", resp.Bounds)
	}
}

func TestFrame(t *testing.T) {
	h := newTestRouter(t)
	target := "/api/frame.png?field=circle&threshold=1&resolution=0.25&w=64&h=32&layers=axis,contour"

	rec := get(t, h, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("image bounds %v", b)
	}

	if got := get(t, h, target).Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second request X-Cache = %q", got)
	}
}

func TestBadParameters(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"unknown field", "/api/contour?field=nope", "unknown field"},
		{"non-numeric resolution", "/api/contour?resolution=abc", "resolution"},
		{"zero resolution", "/api/contour?resolution=0", "invalid resolution"},
		{"infinite bound", "/api/contour?maxx=Inf", "maxx"},
		{"too many cells", "/api/contour?resolution=0.0001&minx=-1000&maxx=1000", "too many cells"},
		{"unknown layer", "/api/frame.png?layers=grid,bogus", "unknown layer"},
		{"zero width", "/api/frame.png?w=0", "frame size"},
		{"oversized frame", "/api/frame.png?w=100000", "frame size"},
		{"negative scale", "/api/frame.png?scale=-1", "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %q does not mention %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestRouterWithoutCache(t *testing.T) {
	h := NewRouter(RouterConfig{})
	rec := get(t, h, "/api/contour?field=circle&threshold=1&resolution=0.5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("X-Cache set without a cache")
	}
	if get(t, h, "/api/cache/stats").Code != http.StatusNotFound {
		t.Error("cache stats served without a cache")
	}
}
