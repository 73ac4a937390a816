// Package field provides the scalar fields whose level sets are drawn.
//
// Samplers are assumed pure: they may be called any number of times per
// frame and nothing caches their results.
package field

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownField is returned by Lookup for a name that is not registered.
var ErrUnknownField = errors.New("unknown field")

// Sampler evaluates a scalar field in the y-up function domain.
type Sampler interface {
	Evaluate(x, y float64) float64
}

// Func adapts an ordinary function to a Sampler.
type Func func(x, y float64) float64

func (f Func) Evaluate(x, y float64) float64 { return f(x, y) }

// Field is a named built-in field.
type Field struct {
	Name        string
	Description string
	// Threshold is the level that gives a recognisable picture.
	Threshold float64
	Sampler   Sampler
}

var builtins = map[string]Field{
	"heart": {
		Name:        "heart",
		Description: "x² + (y - √|x|)²",
		Threshold:   3,
		Sampler: Func(func(x, y float64) float64 {
			d := y - math.Sqrt(math.Abs(x))
			return x*x + d*d
		}),
	},
	"circle": {
		Name:        "circle",
		Description: "x² + y²",
		Threshold:   1,
		Sampler:     Func(func(x, y float64) float64 { return x*x + y*y }),
	},
	"saddle": {
		Name:        "saddle",
		Description: "x² - y²",
		Threshold:   0,
		Sampler:     Func(func(x, y float64) float64 { return x*x - y*y }),
	},
	"ripple": {
		Name:        "ripple",
		Description: "sin(x)·cos(y)",
		Threshold:   0,
		Sampler:     Func(func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) }),
	},
	"ovals": {
		Name:        "ovals",
		Description: "Cassini ovals, foci at (±1, 0)",
		Threshold:   1,
		Sampler: Func(func(x, y float64) float64 {
			return math.Hypot(x-1, y) * math.Hypot(x+1, y)
		}),
	},
}

// Lookup returns the built-in field with the given name.
func Lookup(name string) (Field, error) {
	f, ok := builtins[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Names lists the built-in fields in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the built-in fields ordered by name.
func All() []Field {
	out := make([]Field, 0, len(builtins))
	for _, n := range Names() {
		out = append(out, builtins[n])
	}
	return out
}
