package colour

import (
	"fmt"
	"slices"
)

// BaseStep is the scale step that reproduces the base colour unchanged.
const BaseStep = 500

// Scale is an ordered list of ramp steps. Steps below BaseStep tint toward
// white and steps above shade toward black.
type Scale []int

// LegacyScale is the original eleven step ramp.
var LegacyScale = Scale{25, 100, 200, 300, 400, 500, 600, 700, 800, 900, 975}

// FineScale is the 31 step opacity-style ramp. It is symmetric around 500.
var FineScale = Scale{
	5, 10, 25, 50, 75,
	100, 125, 150, 175, 200,
	250, 300, 350, 400, 450, 500, 550, 600, 650, 700, 750,
	800, 825, 850, 875, 900,
	925, 950, 975, 990, 995,
}

// ScaleByName resolves "legacy" or "fine".
func ScaleByName(name string) (Scale, error) {
	switch name {
	case "", "legacy":
		return LegacyScale, nil
	case "fine":
		return FineScale, nil
	default:
		return nil, fmt.Errorf("unknown scale %q (must be 'legacy' or 'fine')", name)
	}
}

// Contains reports whether step is part of the scale.
func (s Scale) Contains(step int) bool {
	return slices.Contains(s, step)
}

// Blend linearly interpolates every channel: base*(1-amount) + overlay*amount.
// amount is not clamped; values outside [0, 1] extrapolate.
func Blend(base, overlay RGBA, amount float64) RGBA {
	mix := func(a, b float64) float64 { return a*(1-amount) + b*amount }
	return RGBA{
		R: mix(base.R, overlay.R),
		G: mix(base.G, overlay.G),
		B: mix(base.B, overlay.B),
		A: mix(base.A, overlay.A),
	}
}

// Shade returns the colour at step on a ramp centred on base.
func Shade(base RGBA, step int) RGBA {
	switch {
	case step == BaseStep:
		return base
	case step < BaseStep:
		return Blend(base, White, float64(BaseStep-step)/BaseStep)
	default:
		return Blend(base, Black, float64(step-BaseStep)/BaseStep)
	}
}

// ShadeHex parses baseHex and returns the shade at step as a Color.
func ShadeHex(baseHex string, step int) (Color, error) {
	base, err := HexToRGBA(baseHex)
	if err != nil {
		return Color{}, err
	}
	return NewColor(Shade(base, step)), nil
}

// Ramp is one generated shade.
type Ramp struct {
	Step  int
	Color Color
}

// BuildRamp applies Shade across every step of the scale.
func BuildRamp(base RGBA, scale Scale) []Ramp {
	out := make([]Ramp, len(scale))
	for i, step := range scale {
		out[i] = Ramp{Step: step, Color: NewColor(Shade(base, step))}
	}
	return out
}
