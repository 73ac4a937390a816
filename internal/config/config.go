// Package config handles configuration loading for isoplane.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	View    ViewConfig    `yaml:"view"`
	Zoom    ZoomConfig    `yaml:"zoom"`
	Contour ContourConfig `yaml:"contour"`
	Layers  LayersConfig  `yaml:"layers"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
}

// ViewConfig is the initial window onto the plane.
type ViewConfig struct {
	CenterX   float64 `yaml:"center_x"`
	CenterY   float64 `yaml:"center_y"`
	HalfWidth float64 `yaml:"half_width"`
}

// ZoomConfig contains the zoom step and its bounds.
type ZoomConfig struct {
	Factor    float64 `yaml:"factor"`
	LimitLow  float64 `yaml:"limit_low"`
	LimitHigh float64 `yaml:"limit_high"`
}

// ContourConfig selects the field and the sampling parameters.
type ContourConfig struct {
	Field           string   `yaml:"field"`
	Threshold       *float64 `yaml:"threshold"`
	Resolution      float64  `yaml:"resolution"`
	SaddleTolerance float64  `yaml:"saddle_tolerance"`
	MaxCells        int      `yaml:"max_cells"`
}

// LayersConfig holds the initial layer toggles. Unset toggles are on.
type LayersConfig struct {
	Contour *bool `yaml:"contour"`
	Axis    *bool `yaml:"axis"`
	Dots    *bool `yaml:"dots"`
	Grid    *bool `yaml:"grid"`
}

// ExportConfig is the frame size used by -export.
type ExportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	CORSOrigins    []string `yaml:"cors_origins"`
	FrameCacheMB   int      `yaml:"frame_cache_mb"`
	FrameTTLMin    int      `yaml:"frame_ttl_minutes"`
	QueryCacheSize int      `yaml:"query_cache_size"`
	MaxFrameSize   int      `yaml:"max_frame_size"`
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the default configuration: the heart field at
// threshold 3 in a 4x2 window around the origin.
func DefaultConfig() *Config {
	return &Config{
		View: ViewConfig{HalfWidth: 2},
		Zoom: ZoomConfig{
			Factor:    1.1,
			LimitLow:  0,
			LimitHigh: 10000,
		},
		Contour: ContourConfig{
			Field:      "heart",
			Resolution: 0.2,
			MaxCells:   4_000_000,
		},
		Layers: LayersConfig{},
		Export: ExportConfig{Width: 1200, Height: 600},
		Server: ServerConfig{
			Port:           8080,
			CORSOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
			FrameCacheMB:   64,
			FrameTTLMin:    10,
			QueryCacheSize: 256,
			MaxFrameSize:   4096,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.View.HalfWidth == 0 {
		cfg.View.HalfWidth = defaults.View.HalfWidth
	}
	if cfg.Zoom.Factor == 0 {
		cfg.Zoom.Factor = defaults.Zoom.Factor
	}
	if cfg.Zoom.LimitHigh == 0 {
		cfg.Zoom.LimitHigh = defaults.Zoom.LimitHigh
	}
	if cfg.Contour.Field == "" {
		cfg.Contour.Field = defaults.Contour.Field
	}
	if cfg.Contour.Resolution == 0 {
		cfg.Contour.Resolution = defaults.Contour.Resolution
	}
	if cfg.Contour.MaxCells == 0 {
		cfg.Contour.MaxCells = defaults.Contour.MaxCells
	}
	if cfg.Export.Width == 0 {
		cfg.Export.Width = defaults.Export.Width
	}
	if cfg.Export.Height == 0 {
		cfg.Export.Height = defaults.Export.Height
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Server.FrameCacheMB == 0 {
		cfg.Server.FrameCacheMB = defaults.Server.FrameCacheMB
	}
	if cfg.Server.FrameTTLMin == 0 {
		cfg.Server.FrameTTLMin = defaults.Server.FrameTTLMin
	}
	if cfg.Server.QueryCacheSize == 0 {
		cfg.Server.QueryCacheSize = defaults.Server.QueryCacheSize
	}
	if cfg.Server.MaxFrameSize == 0 {
		cfg.Server.MaxFrameSize = defaults.Server.MaxFrameSize
	}
}

// Validate checks the ranges the view and the extractor rely on.
func (c *Config) Validate() error {
	switch {
	case !(c.View.HalfWidth > 0):
		return fmt.Errorf("%w: view.half_width must be positive, got %v", ErrInvalid, c.View.HalfWidth)
	case !(c.Zoom.Factor > 1):
		return fmt.Errorf("%w: zoom.factor must be greater than 1, got %v", ErrInvalid, c.Zoom.Factor)
	case c.Zoom.LimitLow < 0 || !(c.Zoom.LimitLow < c.Zoom.LimitHigh):
		return fmt.Errorf("%w: zoom limits must satisfy 0 <= low < high, got [%v, %v]", ErrInvalid, c.Zoom.LimitLow, c.Zoom.LimitHigh)
	case !(c.Contour.Resolution > 0):
		return fmt.Errorf("%w: contour.resolution must be positive, got %v", ErrInvalid, c.Contour.Resolution)
	case c.Contour.SaddleTolerance < 0:
		return fmt.Errorf("%w: contour.saddle_tolerance must not be negative", ErrInvalid)
	case c.Contour.MaxCells < 0:
		return fmt.Errorf("%w: contour.max_cells must not be negative", ErrInvalid)
	case c.Export.Width < 1 || c.Export.Height < 1:
		return fmt.Errorf("%w: export size must be positive, got %dx%d", ErrInvalid, c.Export.Width, c.Export.Height)
	case c.Server.FrameCacheMB < 0 || c.Server.QueryCacheSize < 1:
		return fmt.Errorf("%w: cache sizes must be positive", ErrInvalid)
	}
	return nil
}

// ThresholdOr returns the configured threshold, or def when none is set.
// Zero is a meaningful threshold, so absence is tracked separately.
func (c ContourConfig) ThresholdOr(def float64) float64 {
	if c.Threshold == nil {
		return def
	}
	return *c.Threshold
}

func on(b *bool) bool { return b == nil || *b }

func (l LayersConfig) ContourOn() bool { return on(l.Contour) }
func (l LayersConfig) AxisOn() bool    { return on(l.Axis) }
func (l LayersConfig) DotsOn() bool    { return on(l.Dots) }
func (l LayersConfig) GridOn() bool    { return on(l.Grid) }
