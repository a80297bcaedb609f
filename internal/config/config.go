// Package config loads tokenkit settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/generate"
	"github.com/jmylchreest/tokenkit/internal/token"
)

// EnvPrefix prefixes every environment override, e.g. TOKENKIT_SYNC_TIMEOUT.
const EnvPrefix = "TOKENKIT"

// Config holds all configuration options for tokenkit.
type Config struct {
	Name       string           `mapstructure:"name" yaml:"name"`
	Separator  string           `mapstructure:"separator" yaml:"separator"`
	Brand      string           `mapstructure:"brand" yaml:"brand"`
	Palette    PaletteConfig    `mapstructure:"palette" yaml:"palette"`
	Typography TypographyConfig `mapstructure:"typography" yaml:"typography"`
	Spacing    SpacingConfig    `mapstructure:"spacing" yaml:"spacing"`
	Radius     RadiusConfig     `mapstructure:"radius" yaml:"radius"`
	Shadow     ShadowConfig     `mapstructure:"shadow" yaml:"shadow"`
	Sync       SyncConfig       `mapstructure:"sync" yaml:"sync"`
	Export     ExportConfig     `mapstructure:"export" yaml:"export"`
	Themes     []ThemeConfig    `mapstructure:"themes" yaml:"themes,omitempty"`
}

// PaletteConfig lists extra palettes generated next to the theme palettes.
type PaletteConfig struct {
	Scale         string                `mapstructure:"scale" yaml:"scale"` // "legacy" (default) or "fine"
	Colors        []generate.NamedColor `mapstructure:"colors" yaml:"colors,omitempty"`
	DisabledSteps []int                 `mapstructure:"disabled_steps" yaml:"disabled_steps,omitempty"`
}

// TypographyConfig holds the modular type scale.
type TypographyConfig struct {
	Base  float64 `mapstructure:"base" yaml:"base"`
	Ratio float64 `mapstructure:"ratio" yaml:"ratio"`
}

// SpacingConfig holds the spacing ladder settings.
type SpacingConfig struct {
	Base        float64 `mapstructure:"base" yaml:"base"`
	Progression string  `mapstructure:"progression" yaml:"progression"` // linear, fibonacci or golden
}

// RadiusConfig holds the radius ladder base.
type RadiusConfig struct {
	Base float64 `mapstructure:"base" yaml:"base"`
}

// ShadowConfig holds the shadow presets' colour.
type ShadowConfig struct {
	Color   string  `mapstructure:"color" yaml:"color"`
	Opacity float64 `mapstructure:"opacity" yaml:"opacity"`
}

// SyncConfig configures the host connection.
type SyncConfig struct {
	// Host is the host binary. Empty means sync commands need --host.
	Host           string        `mapstructure:"host" yaml:"host"`
	Args           []string      `mapstructure:"args" yaml:"args,omitempty"`
	IncludeDeletes bool          `mapstructure:"include_deletes" yaml:"include_deletes"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir         string   `mapstructure:"dir" yaml:"dir"`
	Formats     []string `mapstructure:"formats" yaml:"formats"`
	TemplateDir string   `mapstructure:"template_dir" yaml:"template_dir,omitempty"`
}

// ThemeConfig declares a user theme next to the system one.
type ThemeConfig struct {
	Name    string   `mapstructure:"name" yaml:"name"`
	Brand   string   `mapstructure:"brand" yaml:"brand"`
	Accent  string   `mapstructure:"accent" yaml:"accent,omitempty"`
	Neutral string   `mapstructure:"neutral" yaml:"neutral,omitempty"` // none, brand or accent
	Modes   []string `mapstructure:"modes" yaml:"modes,omitempty"`     // light and/or dark; empty means both
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name:       "tokenkit",
		Separator:  token.SeparatorSlash,
		Brand:      "#3B82F6",
		Palette:    PaletteConfig{Scale: "legacy"},
		Typography: TypographyConfig{Base: 16, Ratio: 1.25},
		Spacing:    SpacingConfig{Base: 4, Progression: string(generate.ProgressionLinear)},
		Radius:     RadiusConfig{Base: 4},
		Shadow:     ShadowConfig{Color: "#000000", Opacity: 0.1},
		Sync:       SyncConfig{Timeout: 30 * time.Second},
		Export:     ExportConfig{Dir: "tokens", Formats: []string{"json"}},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("name", d.Name)
	v.SetDefault("separator", d.Separator)
	v.SetDefault("brand", d.Brand)
	v.SetDefault("palette.scale", d.Palette.Scale)
	v.SetDefault("typography.base", d.Typography.Base)
	v.SetDefault("typography.ratio", d.Typography.Ratio)
	v.SetDefault("spacing.base", d.Spacing.Base)
	v.SetDefault("spacing.progression", d.Spacing.Progression)
	v.SetDefault("radius.base", d.Radius.Base)
	v.SetDefault("shadow.color", d.Shadow.Color)
	v.SetDefault("shadow.opacity", d.Shadow.Opacity)
	v.SetDefault("sync.host", d.Sync.Host)
	v.SetDefault("sync.include_deletes", d.Sync.IncludeDeletes)
	v.SetDefault("sync.timeout", d.Sync.Timeout)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.formats", d.Export.Formats)
}

// FlagKeys maps CLI flag names onto config keys. Load binds any of these
// present in the flag set, so a changed flag beats the file.
var FlagKeys = map[string]string{
	"separator":       "separator",
	"name":            "name",
	"host":            "sync.host",
	"include-deletes": "sync.include_deletes",
	"timeout":         "sync.timeout",
	"out":             "export.dir",
	"format":          "export.formats",
}

// SearchPaths returns the config files tried, in order, when no explicit
// path is given.
func SearchPaths() []string {
	paths := []string{".tokenkit.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tokenkit", "config.yaml"))
	}
	return paths
}

// Load reads configuration. An explicit path must exist; otherwise the first
// of SearchPaths that exists is used, and none at all means defaults.
// Environment variables (TOKENKIT_*) override the file and changed flags
// override both. It returns the file used, if any.
func Load(path string, flags *pflag.FlagSet) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, "", fmt.Errorf("failed to bind flag %q: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if err := token.CheckSeparator(c.Separator); err != nil {
		return err
	}
	if _, err := colour.ScaleByName(c.Palette.Scale); err != nil {
		return fmt.Errorf("palette.scale: %w", err)
	}
	if _, err := generate.ParseProgression(c.Spacing.Progression); err != nil {
		return err
	}
	if !colour.IsHex(c.Brand) {
		return fmt.Errorf("brand: invalid hex colour %q", c.Brand)
	}
	for _, nc := range c.Palette.Colors {
		if nc.Name == "" {
			return errors.New("palette.colors: every colour needs a name")
		}
		if !colour.IsHex(nc.Hex) {
			return fmt.Errorf("palette.colors[%s]: invalid hex colour %q", nc.Name, nc.Hex)
		}
	}
	if c.Typography.Base <= 0 {
		return fmt.Errorf("typography.base must be positive, got %g", c.Typography.Base)
	}
	if c.Typography.Ratio <= 1 {
		return fmt.Errorf("typography.ratio must be greater than 1, got %g", c.Typography.Ratio)
	}
	if c.Spacing.Base <= 0 {
		return fmt.Errorf("spacing.base must be positive, got %g", c.Spacing.Base)
	}
	if c.Radius.Base < 0 {
		return fmt.Errorf("radius.base must not be negative, got %g", c.Radius.Base)
	}
	if c.Shadow.Color != "" && !colour.IsHex(c.Shadow.Color) {
		return fmt.Errorf("shadow.color: invalid hex colour %q", c.Shadow.Color)
	}
	if c.Shadow.Opacity < 0 || c.Shadow.Opacity > 1 {
		return fmt.Errorf("shadow.opacity must be within [0, 1], got %g", c.Shadow.Opacity)
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be positive, got %s", c.Sync.Timeout)
	}
	for i, t := range c.Themes {
		if _, err := t.Theme(); err != nil {
			return fmt.Errorf("themes[%d]: %w", i, err)
		}
	}
	return nil
}

// Theme converts the entry into a token.Theme. The id is left for the
// registry to derive from the name.
func (t ThemeConfig) Theme() (token.Theme, error) {
	brand, err := colour.ParseColor(t.Brand)
	if err != nil {
		return token.Theme{}, fmt.Errorf("brand: %w", err)
	}
	out := token.Theme{Name: t.Name, Brand: brand, Neutral: token.NeutralStrategy(t.Neutral)}
	if out.Neutral == "" {
		out.Neutral = token.NeutralNone
	}
	if !out.Neutral.Valid() {
		return token.Theme{}, fmt.Errorf("unknown neutral strategy %q", t.Neutral)
	}
	if t.Accent != "" {
		accent, err := colour.ParseColor(t.Accent)
		if err != nil {
			return token.Theme{}, fmt.Errorf("accent: %w", err)
		}
		out.Accent = &accent
	}
	if len(t.Modes) == 0 {
		out.Light, out.Dark = true, true
	}
	for _, m := range t.Modes {
		switch m {
		case token.ModeLight:
			out.Light = true
		case token.ModeDark:
			out.Dark = true
		default:
			return token.Theme{}, fmt.Errorf("unknown mode %q (must be %q or %q)", m, token.ModeLight, token.ModeDark)
		}
	}
	return out, nil
}

// ThemeRegistry builds the registry: the system theme on Brand, then every
// configured user theme.
func (c Config) ThemeRegistry(logger hclog.Logger) (*token.ThemeRegistry, error) {
	brand, err := colour.ParseColor(c.Brand)
	if err != nil {
		return nil, fmt.Errorf("brand: %w", err)
	}
	reg := token.NewThemeRegistry(brand, logger)
	for i, tc := range c.Themes {
		t, err := tc.Theme()
		if err != nil {
			return nil, fmt.Errorf("themes[%d]: %w", i, err)
		}
		if _, err := reg.Create(t); err != nil {
			return nil, fmt.Errorf("themes[%d]: %w", i, err)
		}
	}
	return reg, nil
}

// Generate converts the generator settings.
func (c Config) Generate() (generate.Config, error) {
	scale, err := colour.ScaleByName(c.Palette.Scale)
	if err != nil {
		return generate.Config{}, err
	}
	prog, err := generate.ParseProgression(c.Spacing.Progression)
	if err != nil {
		return generate.Config{}, err
	}
	return generate.Config{
		Palette: generate.PaletteConfig{
			Colors:   c.Palette.Colors,
			Scale:    scale,
			Disabled: c.Palette.DisabledSteps,
		},
		Typography: generate.TypographyConfig{Base: c.Typography.Base, Ratio: c.Typography.Ratio},
		Spacing:    generate.SpacingConfig{Base: c.Spacing.Base, Progression: prog},
		Radius:     generate.RadiusConfig{Base: c.Radius.Base},
		Shadow:     generate.ShadowConfig{Color: c.Shadow.Color, Opacity: c.Shadow.Opacity},
	}, nil
}
