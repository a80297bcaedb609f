// Package colour provides the colour math behind token generation: hex parsing
// and formatting, linear blending and shade ramps.
package colour

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a string is not a 3, 6 or 8 digit hex colour.
var ErrInvalidHex = errors.New("invalid hex colour")

// RGBA is a colour with each channel normalised to [0, 1].
type RGBA struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// Common reference colours.
var (
	White = RGBA{R: 1, G: 1, B: 1, A: 1}
	Black = RGBA{R: 0, G: 0, B: 0, A: 1}
	// MidGray is used wherever a colour cannot be resolved yet.
	MidGray = RGBA{R: 128.0 / 255.0, G: 128.0 / 255.0, B: 128.0 / 255.0, A: 1}
)

// Sum returns R+G+B, a cheap proxy for perceived lightness.
func (c RGBA) Sum() float64 {
	return c.R + c.G + c.B
}

// Equal reports whether every channel, alpha included, is identical.
func (c RGBA) Equal(o RGBA) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B && c.A == o.A
}

// String returns the colour in CSS rgba() notation with 0-255 channels.
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)",
		to8(c.R), to8(c.G), to8(c.B),
		strconv.FormatFloat(clamp01(c.A), 'f', -1, 64))
}

// HexToRGBA parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the leading # is optional).
// Shorthand is expanded by doubling each nibble. Alpha is 1 unless eight
// digits are supplied.
func HexToRGBA(hex string) (RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}

	alpha := 1.0
	if len(h) == 8 {
		alpha = float64(v&0xff) / 255.0
		v >>= 8
	}

	return RGBA{
		R: float64((v>>16)&0xff) / 255.0,
		G: float64((v>>8)&0xff) / 255.0,
		B: float64(v&0xff) / 255.0,
		A: alpha,
	}, nil
}

// MustHex is HexToRGBA for compile-time tables. It panics on malformed input.
func MustHex(hex string) RGBA {
	c, err := HexToRGBA(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// IsHex reports whether s parses as a hex colour.
func IsHex(s string) bool {
	_, err := HexToRGBA(s)
	return err == nil
}

// RGBAToHex formats c as uppercase "#RRGGBB". Channels are clamped to [0, 1]
// before scaling and alpha is ignored.
func RGBAToHex(c RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", to8(c.R), to8(c.G), to8(c.B))
}

// RGBAToHex8 formats c as uppercase "#RRGGBBAA".
func RGBAToHex8(c RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", to8(c.R), to8(c.G), to8(c.B), to8(c.A))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Color is a colour token value. Hex and RGBA always describe the same colour;
// construct it with NewColor or ParseColor to keep them in sync.
type Color struct {
	Hex  string `json:"hex" yaml:"hex"`
	RGBA RGBA   `json:"rgba" yaml:"rgba"`
}

// NewColor builds a Color from normalised channels.
func NewColor(c RGBA) Color {
	return Color{Hex: RGBAToHex(c), RGBA: c}
}

// ParseColor builds a Color from a hex string, normalising the hex form.
func ParseColor(hex string) (Color, error) {
	c, err := HexToRGBA(hex)
	if err != nil {
		return Color{}, err
	}
	return NewColor(c), nil
}

// Valid reports whether Hex and RGBA agree.
func (c Color) Valid() bool {
	parsed, err := HexToRGBA(c.Hex)
	if err != nil {
		return false
	}
	return RGBAToHex(parsed) == RGBAToHex(c.RGBA)
}
