// Package colorutil provides shared color utilities for the race watcher.
package colorutil

import (
	"image/color"
	"math"
)

// Overlay colors used by the diagnostic capture renderer.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// HSV is a color in OpenCV's HSV convention: H 0-180, S 0-255, V 0-255.
type HSV struct {
	H float64 `toml:"h"`
	S float64 `toml:"s"`
	V float64 `toml:"v"`
}

// InRange reports whether the color lies inside the inclusive [lower, upper]
// HSV box. Hue wrap-around is not handled; ranges used here stay well inside
// 0-180.
func (c HSV) InRange(lower, upper HSV) bool {
	return c.H >= lower.H && c.H <= upper.H &&
		c.S >= lower.S && c.S <= upper.S &&
		c.V >= lower.V && c.V <= upper.V
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) HSV {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v := maxC * 255.0

	var s float64
	if maxC > 0 {
		s = (diff / maxC) * 255.0
	}

	var h float64
	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}
	if h < 0 {
		h += 360
	}

	return HSV{H: h / 2, S: s, V: v}
}
