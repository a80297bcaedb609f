package generate

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

func TestSemanticPath(t *testing.T) {
	tests := []struct {
		in       token.Semantic
		wantPath []string
		wantName string
	}{
		{token.Semantic{Category: "text", Variant: "primary"}, []string{"color", "text"}, "primary"},
		{token.Semantic{Category: "action", Variant: "primary", State: "hover"}, []string{"color", "action", "primary"}, "hover"},
		{token.Semantic{Category: "feedback", Subcategory: "danger", Variant: "subtle"}, []string{"color", "feedback", "danger"}, "subtle"},
	}
	for _, tt := range tests {
		path, name := SemanticPath(tt.in)
		assert.Equal(t, tt.wantPath, path)
		assert.Equal(t, tt.wantName, name)
	}
}

func TestSemanticResolvesPerThemeMode(t *testing.T) {
	p, store := newPipeline(t)
	reg := defaultThemes(t)
	_, err := reg.Create(token.Theme{ID: "ocean", Name: "Ocean", Brand: mustColor(t, "#0EA5E9"), Light: true, Dark: true})
	require.NoError(t, err)

	_, err = p.ThemePalettes(reg.All(), colour.LegacyScale, nil)
	require.NoError(t, err)
	r, err := p.Semantic(reg.All())
	require.NoError(t, err)
	assert.Empty(t, r.Placeholders)

	tok, ok := store.GetByPath("color/action/primary/default")
	require.True(t, ok)
	assert.Equal(t, token.CollectionTokens, tok.Collection)
	assert.Equal(t, &token.References{Light: "colors/brand/brand-500", Dark: "colors/brand/brand-400"}, tok.References)
	require.Len(t, tok.ModeValues, 4)

	brand500, _ := store.GetByPath("colors/brand/brand-500")
	ocean400, _ := store.GetByPath("colors/ocean-brand/ocean-brand-400")
	assert.True(t, tok.ModeValues["light"].Equal(brand500.Value))
	assert.True(t, tok.ModeValues["ocean-dark"].Equal(ocean400.Value))
	assert.True(t, tok.Value.Equal(brand500.Value), "value mirrors the first mode")

	col, _ := store.Collection(token.CollectionTokens)
	assert.Equal(t, []string{"light", "dark", "ocean-light", "ocean-dark"}, col.Modes)
}

func TestSemanticFeedbackSharedAcrossThemes(t *testing.T) {
	p, store := newPipeline(t)
	reg := defaultThemes(t)
	_, err := reg.Create(token.Theme{ID: "ocean", Name: "Ocean", Brand: mustColor(t, "#0EA5E9"), Light: true})
	require.NoError(t, err)
	_, err = p.ThemePalettes(reg.All(), colour.LegacyScale, nil)
	require.NoError(t, err)
	_, err = p.Semantic(reg.All())
	require.NoError(t, err)

	tok, ok := store.GetByPath("color/feedback/danger/default")
	require.True(t, ok)
	assert.True(t, tok.ModeValues["light"].Equal(tok.ModeValues["ocean-light"]))
}

func TestComponentsPlaceholderIsLoggedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Warn})
	store := token.NewStore()
	p := New(store, logger)
	reg := defaultThemes(t)

	rows := []ComponentMapping{{Component: "button", Variant: "primary", Element: "background", Semantic: []string{"color", "action", "primary", "default"}}}
	r, err := p.Components(reg.All(), rows)
	require.NoError(t, err)
	require.Len(t, r.Tokens, 1)
	assert.Len(t, r.Placeholders, 2, "one per mode")

	tok := r.Tokens[0]
	assert.Equal(t, "button/primary/background/default", tok.FullPath)
	assert.Equal(t, colour.RGBAToHex(colour.MidGray), tok.Value.Color.Hex)
	assert.Equal(t, "#808080", tok.ModeValues["dark"].Color.Hex)
	assert.Contains(t, buf.String(), "unresolved reference")
	assert.Contains(t, buf.String(), "color/action/primary/default")
}

func TestComponentsReResolveOnSecondPass(t *testing.T) {
	p, store := newPipeline(t)
	themes := defaultThemes(t).All()

	_, err := p.Components(themes, nil)
	require.NoError(t, err)
	before := store.Len()

	_, err = p.ThemePalettes(themes, colour.LegacyScale, nil)
	require.NoError(t, err)
	_, err = p.Semantic(themes)
	require.NoError(t, err)
	r, err := p.Components(themes, nil)
	require.NoError(t, err)
	assert.Empty(t, r.Placeholders)

	comps, _ := store.Collection(token.CollectionComponents)
	assert.Equal(t, before, comps.TokenCount, "second pass upserts in place")

	btn, _ := store.GetByPath("button/primary/background/hover")
	sem, _ := store.GetByPath("color/action/primary/hover")
	assert.True(t, btn.ModeValues["dark"].Equal(sem.ModeValues["dark"]))
	assert.Equal(t, "color/action/primary/hover", btn.References.Light)
}

func TestComponentsUseStoreSeparator(t *testing.T) {
	store := token.NewStore(token.WithSeparator(token.SeparatorDot))
	p := New(store, nil)
	themes := defaultThemes(t).All()

	_, err := p.ThemePalettes(themes, colour.LegacyScale, nil)
	require.NoError(t, err)
	_, err = p.Semantic(themes)
	require.NoError(t, err)
	r, err := p.Components(themes, []ComponentMapping{{Component: "card", Element: "border", Semantic: []string{"color", "border", "default"}}})
	require.NoError(t, err)
	assert.Empty(t, r.Placeholders)
	assert.Equal(t, "card.border.default", r.Tokens[0].FullPath)
	assert.Equal(t, "color.border.default", r.Tokens[0].References.Light)
}

func TestDerivationValidation(t *testing.T) {
	p, _ := newPipeline(t)

	_, err := p.Semantic(nil)
	require.ErrorIs(t, err, token.ErrValidation)

	_, err = p.Components(defaultThemes(t).All(), []ComponentMapping{{Component: "button"}})
	require.ErrorIs(t, err, token.ErrValidation)
}

func TestComponentTableReferencesSemanticTable(t *testing.T) {
	known := make(map[string]bool)
	for _, row := range SemanticTable {
		path, name := SemanticPath(row.Semantic)
		known[token.BuildFullPath(path, name, "/")] = true
	}
	for _, row := range ComponentTable {
		last := len(row.Semantic) - 1
		ref := token.BuildFullPath(row.Semantic[:last], row.Semantic[last], "/")
		assert.True(t, known[ref], "component %s references unknown %s", row.Component, ref)
	}
}
