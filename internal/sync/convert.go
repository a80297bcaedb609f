package sync

import (
	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// HostSeparator is the path separator hosts use in variable names.
const HostSeparator = token.SeparatorSlash

// VariableType maps a token type onto the host's type system.
func VariableType(t token.Type) plugin.VariableType {
	switch t {
	case token.TypeColor:
		return plugin.VariableColor
	case token.TypeNumber:
		return plugin.VariableFloat
	case token.TypeBoolean:
		return plugin.VariableBoolean
	}
	return plugin.VariableString
}

// TokenType maps a host type back to a token type. Unknown types become
// strings.
func TokenType(t plugin.VariableType) token.Type {
	switch t {
	case plugin.VariableColor:
		return token.TypeColor
	case plugin.VariableFloat:
		return token.TypeNumber
	case plugin.VariableBoolean:
		return token.TypeBoolean
	}
	return token.TypeString
}

// ToVariableValue converts a token value.
func ToVariableValue(v token.Value) plugin.VariableValue {
	switch v.Kind {
	case token.TypeColor:
		c := v.Color.RGBA
		return plugin.ColorValue(plugin.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	case token.TypeNumber:
		return plugin.FloatValue(v.Number)
	case token.TypeBoolean:
		return plugin.BooleanValue(v.Bool)
	}
	return plugin.StringValue(v.Text)
}

// ToTokenValue converts a host value into a value of type want. A kind
// mismatch falls back to the value's display form as a string.
func ToTokenValue(v plugin.VariableValue, want token.Type) token.Value {
	if TokenType(v.Kind) != want || want == token.TypeString && v.Kind != plugin.VariableString {
		return token.StringValue(v.Format())
	}
	switch want {
	case token.TypeColor:
		return token.RGBAValue(colour.RGBA{R: v.Color.R, G: v.Color.G, B: v.Color.B, A: v.Color.A})
	case token.TypeNumber:
		return token.NumberValue(v.Float)
	case token.TypeBoolean:
		return token.BoolValue(v.Bool)
	}
	return token.StringValue(v.String)
}

// VariablesFromStore lists the enabled tokens of a collection as host
// variables named with HostSeparator, together with the collection's modes.
// Every mode carries a value; tokens without per-mode values repeat Value.
func VariablesFromStore(s *token.Store, collection string) ([]LocalVariable, []string) {
	col, ok := s.Collection(collection)
	if !ok {
		return nil, nil
	}
	tokens := s.Filter(token.Filter{Collection: collection, Enabled: token.Ptr(true)})

	out := make([]LocalVariable, 0, len(tokens))
	for _, t := range tokens {
		lv := LocalVariable{
			Name:         token.BuildFullPath(t.Path, t.Name, HostSeparator),
			Type:         VariableType(t.Type),
			ValuesByMode: make(map[string]plugin.VariableValue, len(col.Modes)),
			Description:  t.Description,
		}
		for _, m := range col.Modes {
			lv.ValuesByMode[m] = ToVariableValue(t.ValueForMode(m))
		}
		out = append(out, lv)
	}
	return out, col.Modes
}
