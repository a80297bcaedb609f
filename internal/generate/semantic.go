package generate

import (
	"fmt"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

// PrimitiveRef names one palette shade. Role is either a theme role
// (RoleBrand, RoleAccent, RoleNeutral) or a shared palette name.
type PrimitiveRef struct {
	Role string
	Step int
}

// SemanticMapping aliases a semantic use to a primitive per mode.
type SemanticMapping struct {
	Semantic    token.Semantic
	Light, Dark PrimitiveRef
}

// SemanticTable lists the semantic colour tokens.
var SemanticTable = append([]SemanticMapping{
	{token.Semantic{Category: "background", Variant: "default"}, PrimitiveRef{RoleNeutral, 25}, PrimitiveRef{RoleNeutral, 975}},
	{token.Semantic{Category: "background", Variant: "subtle"}, PrimitiveRef{RoleNeutral, 100}, PrimitiveRef{RoleNeutral, 900}},
	{token.Semantic{Category: "background", Variant: "muted"}, PrimitiveRef{RoleNeutral, 200}, PrimitiveRef{RoleNeutral, 800}},
	{token.Semantic{Category: "background", Variant: "inverse"}, PrimitiveRef{RoleNeutral, 900}, PrimitiveRef{RoleNeutral, 100}},
	{token.Semantic{Category: "surface", Variant: "default"}, PrimitiveRef{RoleNeutral, 25}, PrimitiveRef{RoleNeutral, 900}},
	{token.Semantic{Category: "surface", Variant: "raised"}, PrimitiveRef{RoleNeutral, 100}, PrimitiveRef{RoleNeutral, 800}},
	{token.Semantic{Category: "text", Variant: "primary"}, PrimitiveRef{RoleNeutral, 900}, PrimitiveRef{RoleNeutral, 25}},
	{token.Semantic{Category: "text", Variant: "secondary"}, PrimitiveRef{RoleNeutral, 600}, PrimitiveRef{RoleNeutral, 300}},
	{token.Semantic{Category: "text", Variant: "muted"}, PrimitiveRef{RoleNeutral, 400}, PrimitiveRef{RoleNeutral, 600}},
	{token.Semantic{Category: "text", Variant: "inverse"}, PrimitiveRef{RoleNeutral, 25}, PrimitiveRef{RoleNeutral, 900}},
	{token.Semantic{Category: "text", Variant: "brand"}, PrimitiveRef{RoleBrand, 600}, PrimitiveRef{RoleBrand, 400}},
	{token.Semantic{Category: "border", Variant: "default"}, PrimitiveRef{RoleNeutral, 200}, PrimitiveRef{RoleNeutral, 800}},
	{token.Semantic{Category: "border", Variant: "strong"}, PrimitiveRef{RoleNeutral, 400}, PrimitiveRef{RoleNeutral, 600}},
	{token.Semantic{Category: "border", Variant: "focus"}, PrimitiveRef{RoleBrand, 500}, PrimitiveRef{RoleBrand, 400}},
	{token.Semantic{Category: "action", Variant: "primary", State: "default"}, PrimitiveRef{RoleBrand, 500}, PrimitiveRef{RoleBrand, 400}},
	{token.Semantic{Category: "action", Variant: "primary", State: "hover"}, PrimitiveRef{RoleBrand, 600}, PrimitiveRef{RoleBrand, 300}},
	{token.Semantic{Category: "action", Variant: "primary", State: "active"}, PrimitiveRef{RoleBrand, 700}, PrimitiveRef{RoleBrand, 200}},
	{token.Semantic{Category: "action", Variant: "secondary", State: "default"}, PrimitiveRef{RoleAccent, 500}, PrimitiveRef{RoleAccent, 400}},
	{token.Semantic{Category: "action", Variant: "secondary", State: "hover"}, PrimitiveRef{RoleAccent, 600}, PrimitiveRef{RoleAccent, 300}},
	{token.Semantic{Category: "action", Variant: "disabled", State: "default"}, PrimitiveRef{RoleNeutral, 200}, PrimitiveRef{RoleNeutral, 800}},
}, feedbackMappings()...)

func feedbackMappings() []SemanticMapping {
	var out []SemanticMapping
	for _, c := range FeedbackColors {
		out = append(out,
			SemanticMapping{token.Semantic{Category: "feedback", Subcategory: c.Name, Variant: "default"}, PrimitiveRef{c.Name, 500}, PrimitiveRef{c.Name, 400}},
			SemanticMapping{token.Semantic{Category: "feedback", Subcategory: c.Name, Variant: "subtle"}, PrimitiveRef{c.Name, 100}, PrimitiveRef{c.Name, 900}},
			SemanticMapping{token.Semantic{Category: "feedback", Subcategory: c.Name, Variant: "text"}, PrimitiveRef{c.Name, 700}, PrimitiveRef{c.Name, 200}},
		)
	}
	return out
}

// SemanticPath returns the path and name of a semantic token: the variant
// names the token unless a state is present.
func SemanticPath(s token.Semantic) ([]string, string) {
	path := []string{"color", s.Category}
	if s.Subcategory != "" {
		path = append(path, s.Subcategory)
	}
	if s.State == "" {
		return path, s.Variant
	}
	return append(path, s.Variant), s.State
}

// ref returns the full path of the primitive a theme uses for r.
func (p *Pipeline) ref(themeID string, r PrimitiveRef) string {
	palette := r.Role
	switch r.Role {
	case RoleBrand, RoleAccent, RoleNeutral:
		palette = PaletteName(themeID, r.Role)
	}
	return p.path(ShadePath(palette), ShadeName(palette, r.Step))
}

// modeNames lists the variable mode names of every theme.
func modeNames(themes []token.Theme) []string {
	var out []string
	for _, t := range themes {
		for _, m := range t.Modes() {
			out = append(out, m.Name())
		}
	}
	return out
}

// resolve looks up a token by full path for one mode, falling back to the
// placeholder colour.
func (p *Pipeline) resolve(r *Report, owner, reference string, tm token.ThemeMode) token.Value {
	if t, ok := p.store.GetByPath(reference); ok {
		return t.ValueForMode(tm.Name())
	}
	p.logger.Warn("unresolved reference, using placeholder",
		"token", owner, "reference", reference, "theme", tm.ThemeID, "mode", tm.Mode)
	r.Placeholders = append(r.Placeholders, Placeholder{Token: owner, Reference: reference, Mode: tm.Name()})
	return token.RGBAValue(colour.MidGray)
}

// Semantic derives the semantic tier from the theme palettes. Every
// (row, theme, mode) resolves the referenced primitive; misses fall back to
// the placeholder colour and are logged.
func (p *Pipeline) Semantic(themes []token.Theme) (Report, error) {
	return p.derive(themes, token.CollectionTokens, len(SemanticTable), func(i int) derivation {
		row := SemanticTable[i]
		path, name := SemanticPath(row.Semantic)
		class := row.Semantic
		return derivation{
			draft: token.Draft{
				Name:     name,
				Path:     path,
				Semantic: &class,
				Tags:     []string{"semantic", row.Semantic.Category},
			},
			reference: func(tm token.ThemeMode) string {
				if tm.Mode == token.ModeDark {
					return p.ref(tm.ThemeID, row.Dark)
				}
				return p.ref(tm.ThemeID, row.Light)
			},
		}
	})
}

// ComponentMapping aliases a component element to a semantic token.
// Semantic holds the semantic token's path segments, name last.
type ComponentMapping struct {
	Component string
	Variant   string
	Element   string
	State     string
	Semantic  []string
}

// Path returns the component token's path and name.
func (m ComponentMapping) Path() ([]string, string) {
	var path []string
	for _, s := range []string{m.Component, m.Variant, m.Element} {
		if s != "" {
			path = append(path, s)
		}
	}
	if m.State == "" {
		return path, "default"
	}
	return path, m.State
}

func sem(segments ...string) []string { return segments }

// ComponentTable lists the default component mappings.
var ComponentTable = []ComponentMapping{
	{"button", "primary", "background", "", sem("color", "action", "primary", "default")},
	{"button", "primary", "background", "hover", sem("color", "action", "primary", "hover")},
	{"button", "primary", "background", "active", sem("color", "action", "primary", "active")},
	{"button", "primary", "background", "disabled", sem("color", "action", "disabled", "default")},
	{"button", "primary", "text", "", sem("color", "text", "inverse")},
	{"button", "secondary", "background", "", sem("color", "action", "secondary", "default")},
	{"button", "secondary", "background", "hover", sem("color", "action", "secondary", "hover")},
	{"button", "secondary", "text", "", sem("color", "text", "inverse")},
	{"input", "", "background", "", sem("color", "surface", "default")},
	{"input", "", "border", "", sem("color", "border", "default")},
	{"input", "", "border", "focus", sem("color", "border", "focus")},
	{"input", "", "text", "", sem("color", "text", "primary")},
	{"input", "", "placeholder", "", sem("color", "text", "muted")},
	{"card", "", "background", "", sem("color", "surface", "raised")},
	{"card", "", "border", "", sem("color", "border", "default")},
	{"link", "", "text", "", sem("color", "text", "brand")},
	{"link", "", "text", "hover", sem("color", "action", "primary", "hover")},
	{"badge", "success", "background", "", sem("color", "feedback", "success", "subtle")},
	{"badge", "success", "text", "", sem("color", "feedback", "success", "text")},
	{"badge", "warning", "background", "", sem("color", "feedback", "warning", "subtle")},
	{"badge", "warning", "text", "", sem("color", "feedback", "warning", "text")},
	{"badge", "danger", "background", "", sem("color", "feedback", "danger", "subtle")},
	{"badge", "danger", "text", "", sem("color", "feedback", "danger", "text")},
	{"alert", "info", "background", "", sem("color", "feedback", "info", "subtle")},
	{"alert", "info", "border", "", sem("color", "feedback", "info", "default")},
}

// Components derives component tokens by resolving each row's semantic
// token by exact full path. Nil rows means ComponentTable.
func (p *Pipeline) Components(themes []token.Theme, rows []ComponentMapping) (Report, error) {
	if rows == nil {
		rows = ComponentTable
	}
	for _, row := range rows {
		if row.Component == "" || len(row.Semantic) == 0 {
			return Report{}, &token.ValidationError{Field: "component", Message: "component and semantic reference are required"}
		}
	}
	return p.derive(themes, token.CollectionComponents, len(rows), func(i int) derivation {
		row := rows[i]
		path, name := row.Path()
		last := len(row.Semantic) - 1
		reference := p.path(row.Semantic[:last], row.Semantic[last])
		return derivation{
			draft: token.Draft{
				Name: name,
				Path: path,
				Semantic: &token.Semantic{
					Category:    row.Component,
					Subcategory: row.Element,
					Variant:     row.Variant,
					State:       row.State,
				},
				Tags: []string{"component", row.Component},
			},
			reference: func(token.ThemeMode) string { return reference },
		}
	})
}

type derivation struct {
	draft     token.Draft
	reference func(token.ThemeMode) string
}

// derive materialises n aliasing tokens into collection, one value per
// theme mode, and sets the collection's modes to match.
func (p *Pipeline) derive(themes []token.Theme, collection string, n int, row func(int) derivation) (Report, error) {
	if len(themes) == 0 {
		return Report{}, &token.ValidationError{Field: "themes", Message: "at least one theme is required"}
	}
	modes := modeNames(themes)
	if err := p.ensureModes(collection, modes); err != nil {
		return Report{}, err
	}

	var r Report
	for i := range n {
		d := row(i)
		owner := p.path(d.draft.Path, d.draft.Name)
		values := make(map[string]token.Value, len(modes))
		refs := &token.References{}
		var first token.Value
		for ti, t := range themes {
			for mi, tm := range t.Modes() {
				reference := d.reference(tm)
				v := p.resolve(&r, owner, reference, tm)
				values[tm.Name()] = v
				if ti == 0 && mi == 0 {
					first = v
				}
				if ti == 0 {
					switch tm.Mode {
					case token.ModeLight:
						refs.Light = reference
					case token.ModeDark:
						refs.Dark = reference
					}
				}
			}
		}
		if refs.Light == "" {
			refs.Light, refs.Dark = refs.Dark, ""
		}
		d.draft.Value = first
		d.draft.ModeValues = values
		d.draft.References = refs
		d.draft.Collection = collection
		if err := p.create(&r, d.draft); err != nil {
			return r, err
		}
	}
	if len(r.Placeholders) > 0 {
		p.logger.Warn("derived tokens with placeholders", "collection", collection, "placeholders", len(r.Placeholders))
	}
	p.logger.Debug("derived tokens", "collection", collection, "tokens", len(r.Tokens), "modes", len(modes))
	return r, nil
}

// ensureModes sets the collection's modes, creating it if needed.
func (p *Pipeline) ensureModes(collection string, modes []string) error {
	if _, ok := p.store.Collection(collection); !ok {
		if err := p.store.AddCollection(token.Collection{Name: collection, Modes: modes}); err != nil {
			return fmt.Errorf("add collection %s: %w", collection, err)
		}
		return nil
	}
	return p.store.SetModes(collection, modes)
}
