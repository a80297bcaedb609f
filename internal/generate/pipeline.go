// Package generate expands small configurations into token sets: colour
// ramps, type and spacing scales, effects, and the semantic and component
// tiers that alias them. Every token is written through token.Store, so
// re-running a generator updates tokens in place.
package generate

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

// Pipeline runs generators against a store.
type Pipeline struct {
	store  *token.Store
	logger hclog.Logger
}

// New creates a pipeline writing into store.
func New(store *token.Store, logger hclog.Logger) *Pipeline {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Pipeline{store: store, logger: logger.Named("generate")}
}

// Report lists what a generator wrote.
type Report struct {
	Tokens []token.Token

	// Placeholders lists references that could not be resolved and were
	// filled with colour.MidGray instead.
	Placeholders []Placeholder
}

// Placeholder records one unresolved reference.
type Placeholder struct {
	Token     string
	Reference string
	Mode      string
}

func (r *Report) merge(o Report) {
	r.Tokens = append(r.Tokens, o.Tokens...)
	r.Placeholders = append(r.Placeholders, o.Placeholders...)
}

// create writes a draft and appends the result to the report.
func (p *Pipeline) create(r *Report, d token.Draft) error {
	t, err := p.store.Create(d)
	if err != nil {
		return fmt.Errorf("create %s: %w", token.BuildFullPath(d.Path, d.Name, p.store.Separator()), err)
	}
	r.Tokens = append(r.Tokens, t)
	return nil
}

// path joins segments with the store's current separator.
func (p *Pipeline) path(segments []string, name string) string {
	return token.BuildFullPath(segments, name, p.store.Separator())
}

// NamedColor is one palette input.
type NamedColor struct {
	Name string `mapstructure:"name" yaml:"name"`
	Hex  string `mapstructure:"hex" yaml:"hex"`
}

// PaletteConfig configures Palette.
type PaletteConfig struct {
	Colors []NamedColor
	Scale  colour.Scale

	// Disabled steps are skipped; the ramp math is unaffected.
	Disabled []int

	Collection string
}

// ShadeName is the token name for one step of a palette, e.g. "brand-500".
func ShadeName(palette string, step int) string {
	return fmt.Sprintf("%s-%d", palette, step)
}

// ShadePath returns the path segments of a palette's tokens.
func ShadePath(palette string) []string {
	return []string{"colors", palette}
}

// Palette generates one colour token per enabled step for every colour.
// Every hex is validated before anything is written.
func (p *Pipeline) Palette(cfg PaletteConfig) (Report, error) {
	scale := cfg.Scale
	if len(scale) == 0 {
		scale = colour.LegacyScale
	}
	collection := cfg.Collection
	if collection == "" {
		collection = token.CollectionPrimitives
	}

	bases := make([]colour.RGBA, len(cfg.Colors))
	for i, nc := range cfg.Colors {
		if nc.Name == "" {
			return Report{}, &token.ValidationError{Field: "palette", Message: "colour name is required"}
		}
		c, err := colour.HexToRGBA(nc.Hex)
		if err != nil {
			return Report{}, &token.ValidationError{Field: "palette." + nc.Name, Message: err.Error()}
		}
		bases[i] = c
	}

	disabled := make(map[int]bool, len(cfg.Disabled))
	for _, step := range cfg.Disabled {
		disabled[step] = true
	}

	var r Report
	for i, nc := range cfg.Colors {
		for _, shade := range colour.BuildRamp(bases[i], scale) {
			if disabled[shade.Step] {
				continue
			}
			err := p.create(&r, token.Draft{
				Name:       ShadeName(nc.Name, shade.Step),
				Path:       ShadePath(nc.Name),
				Value:      token.ColorValue(shade.Color),
				Collection: collection,
				Tags:       []string{"primitive", nc.Name},
			})
			if err != nil {
				return r, err
			}
		}
		p.logger.Debug("generated palette", "name", nc.Name, "hex", nc.Hex, "steps", len(scale)-len(cfg.Disabled))
	}
	return r, nil
}

// FeedbackColors are the shared system palettes used by every theme.
var FeedbackColors = []NamedColor{
	{Name: "success", Hex: "#22C55E"},
	{Name: "warning", Hex: "#F59E0B"},
	{Name: "danger", Hex: "#EF4444"},
	{Name: "info", Hex: "#3B82F6"},
}

// Palette roles every theme provides.
const (
	RoleBrand   = "brand"
	RoleAccent  = "accent"
	RoleNeutral = "neutral"
)

// neutralBase is the untinted neutral-500.
var neutralBase = colour.MustHex("#737373")

// neutralTint is the HSL saturation a tinted neutral keeps.
const neutralTint = 0.08

// PaletteName is the palette a theme uses for a role: the bare role for the
// system theme, "<theme>-<role>" otherwise.
func PaletteName(themeID, role string) string {
	if themeID == token.DefaultThemeID {
		return role
	}
	return themeID + "-" + role
}

// NeutralColor returns the neutral base for a theme's tint strategy.
func NeutralColor(t token.Theme) colour.RGBA {
	_, _, l := colour.HSL(neutralBase)
	switch t.Neutral {
	case token.NeutralBrand:
		return colour.Tinted(t.Brand.RGBA, neutralTint, l)
	case token.NeutralAccent:
		return colour.Tinted(t.AccentColor().RGBA, neutralTint, l)
	}
	return neutralBase
}

// ThemePalettes generates brand, accent and neutral ramps for every theme
// plus the shared feedback ramps.
func (p *Pipeline) ThemePalettes(themes []token.Theme, scale colour.Scale, disabled []int) (Report, error) {
	colors := append([]NamedColor(nil), FeedbackColors...)
	for _, t := range themes {
		colors = append(colors,
			NamedColor{Name: PaletteName(t.ID, RoleBrand), Hex: t.Brand.Hex},
			NamedColor{Name: PaletteName(t.ID, RoleAccent), Hex: t.AccentColor().Hex},
			NamedColor{Name: PaletteName(t.ID, RoleNeutral), Hex: colour.RGBAToHex(NeutralColor(t))},
		)
	}
	return p.Palette(PaletteConfig{Colors: colors, Scale: scale, Disabled: disabled})
}

// Config gathers the inputs of every generator.
type Config struct {
	Palette    PaletteConfig
	Typography TypographyConfig
	Spacing    SpacingConfig
	Radius     RadiusConfig
	Shadow     ShadowConfig
	Components []ComponentMapping
}

// All runs every generator in dependency order: primitives first, then the
// semantic tier, then components. Extra palette colours in cfg.Palette are
// generated alongside the theme palettes.
func (p *Pipeline) All(cfg Config, themes []token.Theme) (Report, error) {
	var r Report
	steps := []struct {
		name string
		run  func() (Report, error)
	}{
		{"theme palettes", func() (Report, error) {
			return p.ThemePalettes(themes, cfg.Palette.Scale, cfg.Palette.Disabled)
		}},
		{"palette", func() (Report, error) { return p.Palette(cfg.Palette) }},
		{"typography", func() (Report, error) { return p.Typography(cfg.Typography) }},
		{"spacing", func() (Report, error) { return p.Spacing(cfg.Spacing) }},
		{"radius", func() (Report, error) { return p.Radius(cfg.Radius) }},
		{"shadow", func() (Report, error) { return p.Shadow(cfg.Shadow) }},
		{"border", p.Border},
		{"semantic", func() (Report, error) { return p.Semantic(themes) }},
		{"components", func() (Report, error) { return p.Components(themes, cfg.Components) }},
	}
	for _, s := range steps {
		out, err := s.run()
		r.merge(out)
		if err != nil {
			return r, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	p.logger.Info("generation complete", "tokens", len(r.Tokens), "placeholders", len(r.Placeholders))
	return r, nil
}
