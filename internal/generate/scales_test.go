package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

func TestFontSizes(t *testing.T) {
	got := FontSizes(16, 1.25)
	want := []float64{10, 13, 16, 20, 25, 31, 39, 49, 61}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].Value, got[i].Name)
	}
}

func TestTypography(t *testing.T) {
	p, store := newPipeline(t)

	r, err := p.Typography(TypographyConfig{Base: 16, Ratio: 1.25})
	require.NoError(t, err)
	assert.Len(t, r.Tokens, len(FontSizeLadder)+len(LineHeights)+len(FontWeights)+len(LetterSpacings)+len(FontFamilies))

	base, ok := store.GetByPath("font/size/base")
	require.True(t, ok)
	assert.Equal(t, token.TypeNumber, base.Type)
	assert.Equal(t, 16.0, base.Value.Number)
	assert.Equal(t, token.CollectionTypography, base.Collection)

	family, ok := store.GetByPath("font/family/mono")
	require.True(t, ok)
	assert.Equal(t, token.TypeString, family.Type)

	bold, _ := store.GetByPath("font/weight/bold")
	assert.Equal(t, 700.0, bold.Value.Number)
}

func TestTypographyValidation(t *testing.T) {
	p, store := newPipeline(t)
	tests := []TypographyConfig{
		{Base: 0, Ratio: 1.25},
		{Base: 16, Ratio: 1},
		{Base: -1, Ratio: 2},
	}
	for _, cfg := range tests {
		_, err := p.Typography(cfg)
		assert.ErrorIs(t, err, token.ErrValidation, "%+v", cfg)
	}
	assert.Zero(t, store.Len())
}

func TestSpacingValues(t *testing.T) {
	tests := []struct {
		prog Progression
		want []float64
	}{
		{ProgressionLinear, []float64{4, 8, 12, 16, 20, 24, 28, 32, 36, 40}},
		{ProgressionFibonacci, []float64{4, 8, 12, 20, 32, 52, 84, 136, 220, 356}},
		{ProgressionGolden, []float64{4, 6, 10, 17, 27, 44, 72, 116, 188, 304}},
	}
	for _, tt := range tests {
		t.Run(string(tt.prog), func(t *testing.T) {
			got := SpacingValues(4, tt.prog)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w, got[i].Value, got[i].Name)
			}
		})
	}
}

func TestSpacing(t *testing.T) {
	p, store := newPipeline(t)

	_, err := p.Spacing(SpacingConfig{Base: 8, Progression: ProgressionFibonacci})
	require.NoError(t, err)

	md, ok := store.GetByPath("spacing/md")
	require.True(t, ok)
	assert.Equal(t, 64.0, md.Value.Number)
	assert.Equal(t, token.CollectionSpacing, md.Collection)

	gap, ok := store.GetByPath("gap/md")
	require.True(t, ok)
	assert.Equal(t, token.CollectionGap, gap.Collection)
	assert.Equal(t, 40.0, gap.ValueForMode(token.ModeDesktop).Number, "gap md uses spacing sm on desktop")
	assert.Equal(t, 24.0, gap.ValueForMode(token.ModeTablet).Number)
	assert.Equal(t, 16.0, gap.ValueForMode(token.ModeMobile).Number)
	gaps, _ := store.Collection(token.CollectionGap)
	assert.Equal(t, len(GapSteps), gaps.TokenCount)

	icon, ok := store.GetByPath("icon/size/lg")
	require.True(t, ok)
	assert.Equal(t, token.CollectionIconSize, icon.Collection)

	_, err = p.Spacing(SpacingConfig{Base: 4, Progression: "exponential"})
	require.ErrorIs(t, err, token.ErrValidation)
}

func TestGapValues(t *testing.T) {
	gaps := GapValues(SpacingValues(4, ProgressionLinear))
	require.Len(t, gaps, len(GapSteps))
	assert.Equal(t, map[string]float64{token.ModeDesktop: 8, token.ModeTablet: 4, token.ModeMobile: 4}, gaps["xs"],
		"narrow breakpoints stop at the smallest spacing step")
	assert.Equal(t, map[string]float64{token.ModeDesktop: 24, token.ModeTablet: 20, token.ModeMobile: 16}, gaps["xl"])
}

func TestParseProgression(t *testing.T) {
	got, err := ParseProgression("")
	require.NoError(t, err)
	assert.Equal(t, ProgressionLinear, got)

	got, err = ParseProgression("golden")
	require.NoError(t, err)
	assert.Equal(t, ProgressionGolden, got)
}

func TestRadiusAndBorder(t *testing.T) {
	p, store := newPipeline(t)

	_, err := p.Radius(RadiusConfig{Base: 4})
	require.NoError(t, err)
	lg, _ := store.GetByPath("radius/lg")
	assert.Equal(t, 8.0, lg.Value.Number)
	full, _ := store.GetByPath("radius/full")
	assert.Equal(t, float64(FullRadius), full.Value.Number)

	_, err = p.Border()
	require.NoError(t, err)
	thin, ok := store.GetByPath("border/width/thin")
	require.True(t, ok)
	assert.Equal(t, 1.0, thin.Value.Number)

	_, err = p.Radius(RadiusConfig{Base: -2})
	require.ErrorIs(t, err, token.ErrValidation)
}

func TestShadowString(t *testing.T) {
	layers := []ShadowLayer{{Y: 4, Blur: 6, Spread: -1, Alpha: 1}, {Y: 2, Blur: 4, Spread: -2, Alpha: 0.5, Inset: true}}
	got := ShadowString(layers, colour.Black, 0.1)
	assert.Equal(t, "0px 4px 6px -1px rgba(0, 0, 0, 0.1), inset 0px 2px 4px -2px rgba(0, 0, 0, 0.05)", got)
}

func TestShadow(t *testing.T) {
	p, store := newPipeline(t)

	_, err := p.Shadow(ShadowConfig{Color: "#0F172A", Opacity: 0.2})
	require.NoError(t, err)
	sm, ok := store.GetByPath("effects/shadow/sm")
	require.True(t, ok)
	assert.Equal(t, token.TypeString, sm.Type)
	assert.Equal(t, "0px 1px 2px 0px rgba(15, 23, 42, 0.1)", sm.Value.Text)

	_, err = p.Shadow(ShadowConfig{Color: "nope", Opacity: 0.2})
	require.ErrorIs(t, err, token.ErrValidation)
	_, err = p.Shadow(ShadowConfig{Opacity: 1.5})
	require.ErrorIs(t, err, token.ErrValidation)
}
