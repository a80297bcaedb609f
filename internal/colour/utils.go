package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c RGBA) float64 {
	return 0.2126*gammaCorrect(clamp01(c.R)) +
		0.7152*gammaCorrect(clamp01(c.G)) +
		0.0722*gammaCorrect(clamp01(c.B))
}

func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the WCAG contrast ratio between two colours, from 1 to 21.
func ContrastRatio(c1, c2 RGBA) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// Lightness returns CIE L* scaled to [0, 1].
func Lightness(c RGBA) float64 {
	l, _, _ := toColorful(c).Lab()
	return l
}

// HSL returns hue (0-360), saturation and lightness (0-1).
func HSL(c RGBA) (h, s, l float64) {
	return toColorful(c).Hsl()
}

// FromHSL builds an opaque colour from hue (0-360), saturation and lightness.
func FromHSL(h, s, l float64) RGBA {
	return fromColorful(colorful.Hsl(h, s, l).Clamped())
}

// Tinted returns a neutral grey carrying the hue of tint. saturation controls
// how much of the tint shows through; 0 yields a pure grey.
func Tinted(tint RGBA, saturation, lightness float64) RGBA {
	h, _, _ := HSL(tint)
	return FromHSL(h, saturation, lightness)
}

func toColorful(c RGBA) colorful.Color {
	return colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func fromColorful(c colorful.Color) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: 1}
}
