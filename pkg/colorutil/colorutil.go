// Package colorutil provides the overlay palette and the HSV value used
// for grayscale conversion.
package colorutil

import "image/color"

// Overlay colors.
var (
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green = color.RGBA{R: 0, G: 220, B: 0, A: 255}
)

// WithAlpha returns c with its alpha replaced, in non-premultiplied terms.
func WithAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Value returns the HSV value of c on a 0-255 scale: its brightest
// 8-bit channel, premultiplied as color.Color reports it.
func Value(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return float64(max(r, g, b) >> 8)
}
