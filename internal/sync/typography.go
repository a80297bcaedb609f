package sync

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jmylchreest/tokenkit/internal/generate"
	"github.com/jmylchreest/tokenkit/internal/token"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// ErrNoTypography is returned when the store holds no generated font sizes.
var ErrNoTypography = errors.New("no typography tokens; run typography generation first")

// SemanticTypeScale maps semantic text roles onto the font size ladder.
var SemanticTypeScale = []struct{ Role, Size string }{
	{"heading/h1", "5xl"},
	{"heading/h2", "4xl"},
	{"heading/h3", "3xl"},
	{"heading/h4", "2xl"},
	{"heading/h5", "xl"},
	{"heading/h6", "lg"},
	{"body/lg", "lg"},
	{"body/md", "base"},
	{"body/sm", "sm"},
	{"caption", "xs"},
}

func lookup(s *token.Store, name string, path ...string) (token.Token, bool) {
	return s.GetByPath(token.BuildFullPath(path, name, s.Separator()))
}

func hostName(path []string, name string) string {
	return token.BuildFullPath(path, name, HostSeparator)
}

// TypographyVariables builds the create-typography-variables payload from
// the Typography collection.
func TypographyVariables(s *token.Store) (plugin.TypographyPayload, error) {
	vars, modes := VariablesFromStore(s, token.CollectionTypography)
	if len(vars) == 0 {
		return plugin.TypographyPayload{}, ErrNoTypography
	}
	p := plugin.TypographyPayload{
		CollectionName: token.CollectionTypography,
		Modes:          slices.Clone(modes),
		Variables:      make([]plugin.VariableDefinition, len(vars)),
	}
	for i, v := range vars {
		p.Variables[i] = plugin.VariableDefinition{Name: v.Name, ResolvedType: v.Type, ValuesByMode: v.ValuesByMode}
	}
	return p, nil
}

// TextStyles builds one text style per font size. Sizes from xl up are set
// semibold with tight leading; smaller sizes are regular with normal
// leading.
func TextStyles(s *token.Store) (plugin.TypographyPayload, error) {
	family := "sans-serif"
	if t, ok := lookup(s, "sans", "font", "family"); ok {
		family = t.Value.Text
	}
	number := func(name string, path ...string) float64 {
		t, _ := lookup(s, name, path...)
		return t.Value.Number
	}

	p := plugin.TypographyPayload{CollectionName: token.CollectionTypography}
	large := slices.Index(generate.FontSizeLadder, "xl")
	for i, size := range generate.FontSizeLadder {
		t, ok := lookup(s, size, "font", "size")
		if !ok {
			continue
		}
		weight, leading, tracking := "regular", "normal", "normal"
		if i >= large {
			weight, leading, tracking = "semibold", "tight", "tight"
		}
		px := t.Value.Number
		p.TextStyles = append(p.TextStyles, plugin.TextStyle{
			Name:          hostName([]string{"text"}, size),
			FontFamily:    family,
			FontSize:      px,
			FontWeight:    number(weight, "font", "weight"),
			LineHeight:    roundTo(px*number(leading, "font", "line-height"), 2),
			LetterSpacing: roundTo(px*number(tracking, "font", "letter-spacing"), 3),
		})
	}
	if len(p.TextStyles) == 0 {
		return plugin.TypographyPayload{}, ErrNoTypography
	}
	return p, nil
}

// SemanticTypography builds role variables aliasing the font size tokens.
func SemanticTypography(s *token.Store) (plugin.TypographyPayload, error) {
	p := plugin.TypographyPayload{
		CollectionName: token.CollectionTypography,
		Modes:          []string{token.ModeValue},
	}
	for _, row := range SemanticTypeScale {
		t, ok := lookup(s, row.Size, "font", "size")
		if !ok {
			return plugin.TypographyPayload{}, fmt.Errorf("%s: %w", row.Role, ErrNoTypography)
		}
		p.Variables = append(p.Variables, plugin.VariableDefinition{
			Name:         hostName([]string{"typography"}, row.Role),
			ResolvedType: plugin.VariableFloat,
			ValuesByMode: map[string]plugin.VariableValue{token.ModeValue: plugin.FloatValue(t.Value.Number)},
			Alias:        hostName(t.Path, t.Name),
		})
	}
	return p, nil
}

// TypographyPayload builds the payload for one of the create-* requests.
func TypographyPayload(s *token.Store, kind plugin.MessageType) (plugin.TypographyPayload, error) {
	switch kind {
	case plugin.MsgCreateTypographyVariables:
		return TypographyVariables(s)
	case plugin.MsgCreateTextStyles:
		return TextStyles(s)
	case plugin.MsgCreateSemanticTypography:
		return SemanticTypography(s)
	}
	return plugin.TypographyPayload{}, fmt.Errorf("%q is not a typography request", kind)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
