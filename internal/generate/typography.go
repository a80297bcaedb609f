package generate

import (
	"math"
	"slices"

	"github.com/jmylchreest/tokenkit/internal/token"
)

// NamedNumber is one row of a fixed table.
type NamedNumber struct {
	Name  string
	Value float64
}

// FontSizeLadder is ordered smallest first. FontSizeAnchor sits at the base size.
var FontSizeLadder = []string{"xs", "sm", "base", "lg", "xl", "2xl", "3xl", "4xl", "5xl"}

const FontSizeAnchor = "base"

var LineHeights = []NamedNumber{
	{"none", 1},
	{"tight", 1.25},
	{"snug", 1.375},
	{"normal", 1.5},
	{"relaxed", 1.625},
	{"loose", 2},
}

var FontWeights = []NamedNumber{
	{"light", 300},
	{"regular", 400},
	{"medium", 500},
	{"semibold", 600},
	{"bold", 700},
}

// LetterSpacings are in em.
var LetterSpacings = []NamedNumber{
	{"tighter", -0.05},
	{"tight", -0.025},
	{"normal", 0},
	{"wide", 0.025},
	{"wider", 0.05},
}

// FontFamilies maps roles to CSS font stacks.
var FontFamilies = []struct{ Name, Stack string }{
	{"sans", "Inter, system-ui, sans-serif"},
	{"serif", "Georgia, serif"},
	{"mono", "JetBrains Mono, ui-monospace, monospace"},
}

// TypographyConfig configures Typography.
type TypographyConfig struct {
	Base       float64
	Ratio      float64
	Collection string
}

// FontSizes expands base and ratio into the ladder, rounded to whole pixels.
func FontSizes(base, ratio float64) []NamedNumber {
	anchor := slices.Index(FontSizeLadder, FontSizeAnchor)
	out := make([]NamedNumber, len(FontSizeLadder))
	for i, name := range FontSizeLadder {
		k := i - anchor
		var size float64
		if k < 0 {
			size = base / math.Pow(ratio, float64(-k))
		} else {
			size = base * math.Pow(ratio, float64(k))
		}
		out[i] = NamedNumber{Name: name, Value: math.Round(size)}
	}
	return out
}

// Typography emits the font size ladder plus the fixed line-height, weight,
// letter-spacing and family tables.
func (p *Pipeline) Typography(cfg TypographyConfig) (Report, error) {
	if cfg.Base <= 0 {
		return Report{}, &token.ValidationError{Field: "typography.base", Message: "base size must be positive"}
	}
	if cfg.Ratio <= 1 {
		return Report{}, &token.ValidationError{Field: "typography.ratio", Message: "scale ratio must be greater than 1"}
	}
	collection := cfg.Collection
	if collection == "" {
		collection = token.CollectionTypography
	}

	groups := []struct {
		path []string
		rows []NamedNumber
	}{
		{[]string{"font", "size"}, FontSizes(cfg.Base, cfg.Ratio)},
		{[]string{"font", "line-height"}, LineHeights},
		{[]string{"font", "weight"}, FontWeights},
		{[]string{"font", "letter-spacing"}, LetterSpacings},
	}

	var r Report
	for _, g := range groups {
		for _, row := range g.rows {
			err := p.create(&r, token.Draft{
				Name:       row.Name,
				Path:       g.path,
				Value:      token.NumberValue(row.Value),
				Collection: collection,
				Tags:       []string{"typography"},
			})
			if err != nil {
				return r, err
			}
		}
	}
	for _, f := range FontFamilies {
		err := p.create(&r, token.Draft{
			Name:       f.Name,
			Path:       []string{"font", "family"},
			Value:      token.StringValue(f.Stack),
			Collection: collection,
			Tags:       []string{"typography"},
		})
		if err != nil {
			return r, err
		}
	}
	p.logger.Debug("generated typography", "base", cfg.Base, "ratio", cfg.Ratio, "tokens", len(r.Tokens))
	return r, nil
}
