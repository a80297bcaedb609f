package token

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tokenkit/internal/colour"
)

// DefaultThemeID is the id of the immortal system theme.
const DefaultThemeID = "default"

// NeutralStrategy controls how the neutral ramp of a theme is tinted.
type NeutralStrategy string

const (
	NeutralNone   NeutralStrategy = "none"
	NeutralBrand  NeutralStrategy = "brand"
	NeutralAccent NeutralStrategy = "accent"
)

// Valid reports whether n is a known strategy. Empty means none.
func (n NeutralStrategy) Valid() bool {
	switch n {
	case "", NeutralNone, NeutralBrand, NeutralAccent:
		return true
	}
	return false
}

// Theme is a brand variation producing one or more modes.
type Theme struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Brand   colour.Color    `json:"brand" yaml:"brand"`
	Accent  *colour.Color   `json:"accent,omitempty" yaml:"accent,omitempty"`
	Neutral NeutralStrategy `json:"neutral,omitempty" yaml:"neutral,omitempty"`
	Light   bool            `json:"light" yaml:"light"`
	Dark    bool            `json:"dark" yaml:"dark"`
	System  bool            `json:"system" yaml:"system"`
}

// ThemeMode is one (theme, mode) pair that generation materialises as a
// distinct variable mode.
type ThemeMode struct {
	ThemeID string
	Mode    string
}

// Name is the variable mode name: the bare mode for the system theme,
// "<theme>-<mode>" otherwise.
func (m ThemeMode) Name() string {
	if m.ThemeID == DefaultThemeID {
		return m.Mode
	}
	return m.ThemeID + "-" + m.Mode
}

// Modes lists the enabled modes of the theme, light first.
func (t Theme) Modes() []ThemeMode {
	var out []ThemeMode
	if t.Light {
		out = append(out, ThemeMode{ThemeID: t.ID, Mode: ModeLight})
	}
	if t.Dark {
		out = append(out, ThemeMode{ThemeID: t.ID, Mode: ModeDark})
	}
	return out
}

// AccentColor returns the accent, falling back to the brand colour.
func (t Theme) AccentColor() colour.Color {
	if t.Accent != nil {
		return *t.Accent
	}
	return t.Brand
}

// ThemePatch lists theme fields to change. Nil fields are left alone.
type ThemePatch struct {
	Name    *string
	Brand   *colour.Color
	Accent  *colour.Color
	Neutral *NeutralStrategy
	Light   *bool
	Dark    *bool
}

// ThemeRegistry holds the system theme and any user themes, in creation order.
type ThemeRegistry struct {
	logger hclog.Logger
	newID  func() string
	themes []*Theme
}

// NewThemeRegistry creates a registry holding only the system theme.
func NewThemeRegistry(brand colour.Color, logger hclog.Logger) *ThemeRegistry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ThemeRegistry{
		logger: logger.Named("themes"),
		newID:  NewID,
		themes: []*Theme{{
			ID:      DefaultThemeID,
			Name:    "Default",
			Brand:   brand,
			Neutral: NeutralNone,
			Light:   true,
			Dark:    true,
			System:  true,
		}},
	}
}

// All returns every theme.
func (r *ThemeRegistry) All() []Theme {
	out := make([]Theme, len(r.themes))
	for i, t := range r.themes {
		out[i] = *t
	}
	return out
}

// Get returns a theme by id.
func (r *ThemeRegistry) Get(id string) (Theme, bool) {
	if t := r.find(id); t != nil {
		return *t, true
	}
	return Theme{}, false
}

// Default returns the system theme.
func (r *ThemeRegistry) Default() Theme {
	return *r.find(DefaultThemeID)
}

// Create adds a user theme. An empty id is derived from the name.
func (r *ThemeRegistry) Create(t Theme) (Theme, error) {
	t.System = false
	if t.ID == "" {
		t.ID = slug(t.Name)
		if t.ID == "" {
			t.ID = r.newID()
		}
	}
	if r.find(t.ID) != nil {
		return Theme{}, &ValidationError{Field: "id", Message: fmt.Sprintf("theme id %q already exists", t.ID)}
	}
	if err := r.validate(t, ""); err != nil {
		return Theme{}, err
	}
	if t.Neutral == "" {
		t.Neutral = NeutralNone
	}
	r.themes = append(r.themes, &t)
	r.logger.Debug("created theme", "id", t.ID, "name", t.Name)
	return t, nil
}

// Update edits a theme. The id of every theme, including the system one, is immutable.
func (r *ThemeRegistry) Update(id string, p ThemePatch) (Theme, error) {
	cur := r.find(id)
	if cur == nil {
		return Theme{}, fmt.Errorf("theme %s: %w", id, ErrNotFound)
	}
	next := *cur
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Brand != nil {
		next.Brand = *p.Brand
	}
	if p.Accent != nil {
		a := *p.Accent
		next.Accent = &a
	}
	if p.Neutral != nil {
		next.Neutral = *p.Neutral
	}
	if p.Light != nil {
		next.Light = *p.Light
	}
	if p.Dark != nil {
		next.Dark = *p.Dark
	}
	if err := r.validate(next, id); err != nil {
		return Theme{}, err
	}
	*cur = next
	return next, nil
}

// Delete removes a user theme.
func (r *ThemeRegistry) Delete(id string) error {
	t := r.find(id)
	if t == nil {
		return fmt.Errorf("theme %s: %w", id, ErrNotFound)
	}
	if t.System {
		return ErrSystemTheme
	}
	r.themes = slices.DeleteFunc(r.themes, func(x *Theme) bool { return x.ID == id })
	r.logger.Debug("deleted theme", "id", id)
	return nil
}

// Modes lists every enabled (theme, mode) pair across all themes.
func (r *ThemeRegistry) Modes() []ThemeMode {
	var out []ThemeMode
	for _, t := range r.themes {
		out = append(out, t.Modes()...)
	}
	return out
}

// ModeNames lists the variable mode names of Modes.
func (r *ThemeRegistry) ModeNames() []string {
	modes := r.Modes()
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.Name()
	}
	return out
}

func (r *ThemeRegistry) find(id string) *Theme {
	for _, t := range r.themes {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// validate checks t; self is the id being updated and is exempt from the
// duplicate name check.
func (r *ThemeRegistry) validate(t Theme, self string) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "theme name is required"}
	}
	for _, other := range r.themes {
		if other.ID != self && strings.EqualFold(strings.TrimSpace(other.Name), name) {
			return fmt.Errorf("%w: %q", ErrDuplicateTheme, t.Name)
		}
	}
	if !t.Brand.Valid() {
		return &ValidationError{Field: "brand", Message: fmt.Sprintf("invalid brand colour %q", t.Brand.Hex)}
	}
	if t.Accent != nil && !t.Accent.Valid() {
		return &ValidationError{Field: "accent", Message: fmt.Sprintf("invalid accent colour %q", t.Accent.Hex)}
	}
	if !t.Neutral.Valid() {
		return &ValidationError{Field: "neutral", Message: fmt.Sprintf("unknown neutral strategy %q", t.Neutral)}
	}
	if !t.Light && !t.Dark {
		return &ValidationError{Field: "modes", Message: "a theme needs a light or dark mode"}
	}
	return nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
