package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"isoplane/internal/field"
	"isoplane/internal/frame"
)

var errSettings = errors.New("bad setting")

// applySettings reads key=value pairs separated by blanks or semicolons.
// Nothing is applied unless every pair parses. Resolution is clamped to
// the range the front end offers.
func (m *Model) applySettings(in string) error {
	var (
		f            = m.field
		threshold    = m.threshold
		resolution   = m.resolution
		layers       = m.layers
		ext          = m.extractor
		thresholdSet bool
	)
	pairs := strings.FieldsFunc(in, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' || r == ';' })
	for _, kv := range pairs {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not key=value", errSettings, kv)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "field", "f":
			nf, err := field.Lookup(val)
			if err != nil {
				return err
			}
			f = nf
			if !thresholdSet {
				threshold = nf.Threshold
			}
		case "threshold", "t":
			v, err := parseFinite(key, val)
			if err != nil {
				return err
			}
			threshold = v
			thresholdSet = true
		case "resolution", "res", "r":
			v, err := parseFinite(key, val)
			if err != nil {
				return err
			}
			if !(v > 0) {
				return fmt.Errorf("%w: resolution must be positive", errSettings)
			}
			resolution = clampf(v, minResolution, maxResolution)
		case "layers":
			l, err := frame.ParseLayers(val)
			if err != nil {
				return err
			}
			layers = l
		case "tolerance":
			v, err := parseFinite(key, val)
			if err != nil {
				return err
			}
			if v < 0 {
				return fmt.Errorf("%w: tolerance must not be negative", errSettings)
			}
			ext.SaddleTolerance = v
		default:
			return fmt.Errorf("%w: unknown key %q", errSettings, key)
		}
	}
	m.field, m.threshold, m.resolution = f, threshold, resolution
	m.layers, m.extractor = layers, ext
	return nil
}

func parseFinite(key, val string) (float64, error) {
	v, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not a number", errSettings, key, val)
	}
	return v, nil
}
