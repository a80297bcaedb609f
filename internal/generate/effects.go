package generate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

// RadiusMultipliers scale the base radius. "full" is fixed at FullRadius.
var RadiusMultipliers = []NamedNumber{
	{"none", 0},
	{"sm", 0.5},
	{"md", 1},
	{"lg", 2},
	{"xl", 3},
	{"2xl", 4},
}

const FullRadius = 9999

// BorderWidths are fixed pixel widths.
var BorderWidths = []NamedNumber{
	{"none", 0},
	{"thin", 1},
	{"medium", 2},
	{"thick", 4},
}

// ShadowLayer is one comma-separated part of a box-shadow. Alpha multiplies
// the configured opacity.
type ShadowLayer struct {
	X, Y, Blur, Spread float64
	Alpha              float64
	Inset              bool
}

// ShadowPreset is a named stack of layers.
type ShadowPreset struct {
	Name   string
	Layers []ShadowLayer
}

var ShadowPresets = []ShadowPreset{
	{"sm", []ShadowLayer{{Y: 1, Blur: 2, Alpha: 0.5}}},
	{"md", []ShadowLayer{{Y: 4, Blur: 6, Spread: -1, Alpha: 1}, {Y: 2, Blur: 4, Spread: -2, Alpha: 1}}},
	{"lg", []ShadowLayer{{Y: 10, Blur: 15, Spread: -3, Alpha: 1}, {Y: 4, Blur: 6, Spread: -4, Alpha: 1}}},
	{"xl", []ShadowLayer{{Y: 20, Blur: 25, Spread: -5, Alpha: 1}, {Y: 8, Blur: 10, Spread: -6, Alpha: 1}}},
	{"2xl", []ShadowLayer{{Y: 25, Blur: 50, Spread: -12, Alpha: 2.5}}},
	{"inner", []ShadowLayer{{Y: 2, Blur: 4, Alpha: 0.5, Inset: true}}},
}

// RadiusConfig configures Radius.
type RadiusConfig struct {
	Base float64
}

// ShadowConfig configures Shadow.
type ShadowConfig struct {
	Color   string
	Opacity float64
}

// Radius emits the radius ladder.
func (p *Pipeline) Radius(cfg RadiusConfig) (Report, error) {
	if cfg.Base < 0 {
		return Report{}, &token.ValidationError{Field: "radius.base", Message: "base radius must not be negative"}
	}
	rows := make([]NamedNumber, 0, len(RadiusMultipliers)+1)
	for _, m := range RadiusMultipliers {
		rows = append(rows, NamedNumber{Name: m.Name, Value: cfg.Base * m.Value})
	}
	rows = append(rows, NamedNumber{Name: "full", Value: FullRadius})
	return p.numbers(rows, []string{"radius"}, token.CollectionRadius, "radius")
}

// Border emits the border width table.
func (p *Pipeline) Border() (Report, error) {
	return p.numbers(BorderWidths, []string{"border", "width"}, token.CollectionPrimitives, "border")
}

func (p *Pipeline) numbers(rows []NamedNumber, path []string, collection, tag string) (Report, error) {
	var r Report
	for _, row := range rows {
		err := p.create(&r, token.Draft{
			Name:       row.Name,
			Path:       path,
			Value:      token.NumberValue(row.Value),
			Collection: collection,
			Tags:       []string{tag},
		})
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

// Shadow emits one string token per preset.
func (p *Pipeline) Shadow(cfg ShadowConfig) (Report, error) {
	hex := cfg.Color
	if hex == "" {
		hex = "#000000"
	}
	base, err := colour.HexToRGBA(hex)
	if err != nil {
		return Report{}, &token.ValidationError{Field: "shadow.color", Message: err.Error()}
	}
	if cfg.Opacity < 0 || cfg.Opacity > 1 {
		return Report{}, &token.ValidationError{Field: "shadow.opacity", Message: "opacity must be within [0, 1]"}
	}

	var r Report
	for _, preset := range ShadowPresets {
		err := p.create(&r, token.Draft{
			Name:       preset.Name,
			Path:       []string{"effects", "shadow"},
			Value:      token.StringValue(ShadowString(preset.Layers, base, cfg.Opacity)),
			Collection: token.CollectionPrimitives,
			Tags:       []string{"shadow"},
		})
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

// ShadowString renders layers as a CSS box-shadow value.
func ShadowString(layers []ShadowLayer, base colour.RGBA, opacity float64) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		c := base
		c.A = math.Round(math.Min(1, math.Max(0, opacity*l.Alpha))*1000) / 1000
		s := fmt.Sprintf("%s %s %s %s %s", px(l.X), px(l.Y), px(l.Blur), px(l.Spread), c)
		if l.Inset {
			s = "inset " + s
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
