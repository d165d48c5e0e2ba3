package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ductnet/internal/domain"
)

// Class is the display severity of an unaccounted value
type Class string

const (
	ClassUnknown    Class = "UNKNOWN"    // no observation
	ClassDataError  Class = "DATA_ERROR" // fewer cables counted than recorded
	ClassConsistent Class = "CONSISTENT"
	ClassMinor      Class = "MINOR"  // one unexplained cable
	ClassSevere     Class = "SEVERE" // more than one
)

// Color is an RGB color
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses #rrggbb or rrggbb
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Lerp interpolates between c and other, t in [0,1]
func (c Color) Lerp(other Color, t float64) Color {
	t = clamp01(t)
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return Color{R: mix(c.R, other.R), G: mix(c.G, other.G), B: mix(c.B, other.B)}
}

// Palette holds the anchor colors of each class. Values between MINOR and
// SEVERE interpolate from Minor to Severe.
type Palette struct {
	Unknown    Color
	DataError  Color
	Consistent Color
	Minor      Color
	Severe     Color
}

// DefaultPalette returns the built-in anchors
func DefaultPalette() Palette {
	return Palette{
		Unknown:    Color{0x9e, 0x9e, 0x9e},
		DataError:  Color{0x6a, 0x1b, 0x9a},
		Consistent: Color{0x2e, 0x7d, 0x32},
		Minor:      Color{0xfb, 0xc0, 0x2d},
		Severe:     Color{0xc6, 0x28, 0x28},
	}
}

// Severity is the classification of one value
type Severity struct {
	Class Class   `json:"class"`
	Scale float64 `json:"scale"` // position between MINOR (0) and SEVERE (1)
	Color string  `json:"color"`
}

// Classifier classifies values against a palette
type Classifier struct {
	Palette Palette
}

// Classify classifies with the default palette
func Classify(value, maxObservedPositive int) Severity {
	return Classifier{Palette: DefaultPalette()}.Classify(value, maxObservedPositive)
}

// ClassifyValue classifies a reconciled value with the default palette
func ClassifyValue(v domain.UnaccountedValue, maxObservedPositive int) Severity {
	return Classifier{Palette: DefaultPalette()}.ClassifyValue(v, maxObservedPositive)
}

// Classify maps a value to its class. maxObservedPositive is the largest
// positive value of the current run, so the SEVERE scale is relative to the
// dataset.
func (c Classifier) Classify(value, maxObservedPositive int) Severity {
	switch {
	case value < 0:
		return Severity{Class: ClassDataError, Color: c.Palette.DataError.Hex()}
	case value == 0:
		return Severity{Class: ClassConsistent, Color: c.Palette.Consistent.Hex()}
	case value == 1:
		return Severity{Class: ClassMinor, Color: c.Palette.Minor.Hex()}
	}

	scale := 1.0
	if maxObservedPositive > 1 {
		scale = clamp01(float64(value-1) / float64(maxObservedPositive-1))
	}
	return Severity{
		Class: ClassSevere,
		Scale: scale,
		Color: c.Palette.Minor.Lerp(c.Palette.Severe, scale).Hex(),
	}
}

// ClassifyValue classifies a reconciled value; unobserved directions are
// UNKNOWN
func (c Classifier) ClassifyValue(v domain.UnaccountedValue, maxObservedPositive int) Severity {
	if !v.Known {
		return Severity{Class: ClassUnknown, Color: c.Palette.Unknown.Hex()}
	}
	return c.Classify(v.Value, maxObservedPositive)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
