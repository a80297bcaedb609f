// Package token holds the in-memory registry of design tokens: typed values
// addressed by a unique full path, grouped into collections and themes.
package token

import (
	"fmt"
	"slices"

	"github.com/jmylchreest/tokenkit/internal/colour"
)

// Type determines the shape of a token's value.
type Type string

const (
	TypeColor   Type = "color"
	TypeNumber  Type = "number"
	TypeString  Type = "string"
	TypeBoolean Type = "boolean"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeColor, TypeNumber, TypeString, TypeBoolean:
		return true
	}
	return false
}

// Value is a typed token value. Only the field matching Kind is meaningful.
type Value struct {
	Kind   Type         `json:"type" yaml:"type"`
	Color  colour.Color `json:"color,omitzero" yaml:"color,omitempty"`
	Number float64      `json:"number,omitempty" yaml:"number,omitempty"`
	Text   string       `json:"text,omitempty" yaml:"text,omitempty"`
	Bool   bool         `json:"bool,omitempty" yaml:"bool,omitempty"`
}

// ColorValue wraps a colour.
func ColorValue(c colour.Color) Value { return Value{Kind: TypeColor, Color: c} }

// RGBAValue wraps normalised channels, deriving the hex form.
func RGBAValue(c colour.RGBA) Value { return ColorValue(colour.NewColor(c)) }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{Kind: TypeNumber, Number: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: TypeString, Text: s} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: TypeBoolean, Bool: b} }

// HexValue parses a hex string into a colour value.
func HexValue(hex string) (Value, error) {
	c, err := colour.ParseColor(hex)
	if err != nil {
		return Value{}, err
	}
	return ColorValue(c), nil
}

// Equal compares values by type: exact numeric, string and boolean
// comparison, component-wise for colours.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case TypeColor:
		return v.Color.RGBA.Equal(o.Color.RGBA)
	case TypeNumber:
		return v.Number == o.Number
	case TypeString:
		return v.Text == o.Text
	case TypeBoolean:
		return v.Bool == o.Bool
	}
	return false
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind {
	case TypeColor:
		return v.Color.Hex
	case TypeNumber:
		return fmt.Sprintf("%g", v.Number)
	case TypeString:
		return v.Text
	case TypeBoolean:
		return fmt.Sprintf("%t", v.Bool)
	}
	return ""
}

// validate checks that the value's shape matches want.
func (v Value) validate(want Type) error {
	if v.Kind != want {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("value of type %q does not match token type %q", v.Kind, want)}
	}
	if v.Kind == TypeColor && !v.Color.Valid() {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("colour %q does not match its channels", v.Color.Hex)}
	}
	return nil
}

// Semantic classifies higher-tier tokens for building alias paths.
type Semantic struct {
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Variant     string `json:"variant,omitempty" yaml:"variant,omitempty"`
	State       string `json:"state,omitempty" yaml:"state,omitempty"`
}

// References points at the full paths a token derives its value from. It is
// informational only; the value is always materialised on the token.
type References struct {
	Light string `json:"light" yaml:"light"`
	Dark  string `json:"dark,omitempty" yaml:"dark,omitempty"`
}

// Token is a named, typed design value.
type Token struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Path        []string    `json:"path" yaml:"path"`
	FullPath    string      `json:"fullPath" yaml:"fullPath"`
	Type        Type        `json:"type" yaml:"type"`
	Value       Value       `json:"value" yaml:"value"`
	Semantic    *Semantic   `json:"semantic,omitempty" yaml:"semantic,omitempty"`
	References  *References `json:"references,omitempty" yaml:"references,omitempty"`
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	Collection  string      `json:"collection" yaml:"collection"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	HostID      string      `json:"figmaId,omitempty" yaml:"figmaId,omitempty"`
	CreatedAt   int64       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   int64       `json:"updatedAt" yaml:"updatedAt"`

	// ModeValues holds the materialised value for each mode of the token's
	// collection when it differs per mode. Value mirrors the first mode.
	ModeValues map[string]Value `json:"modeValues,omitempty" yaml:"modeValues,omitempty"`
}

// ValueForMode returns the value for a mode, falling back to Value.
func (t Token) ValueForMode(mode string) Value {
	if v, ok := t.ModeValues[mode]; ok {
		return v
	}
	return t.Value
}

// clone returns a deep copy so callers never alias store internals.
func (t *Token) clone() Token {
	c := *t
	c.Path = slices.Clone(t.Path)
	c.Tags = slices.Clone(t.Tags)
	if t.Semantic != nil {
		s := *t.Semantic
		c.Semantic = &s
	}
	if t.References != nil {
		r := *t.References
		c.References = &r
	}
	if t.ModeValues != nil {
		c.ModeValues = make(map[string]Value, len(t.ModeValues))
		for k, v := range t.ModeValues {
			c.ModeValues[k] = v
		}
	}
	return c
}

// Draft describes a token to create. FullPath is computed from Path and Name
// when empty. Type is inferred from Value when empty.
type Draft struct {
	Name        string
	Path        []string
	FullPath    string
	Type        Type
	Value       Value
	ModeValues  map[string]Value
	Semantic    *Semantic
	References  *References
	Disabled    bool
	Collection  string
	Tags        []string
	Description string
	HostID      string
}

// DraftFrom converts an existing token into a Draft, dropping its identity.
func DraftFrom(t Token) Draft {
	c := t.clone()
	return Draft{
		Name:        c.Name,
		Path:        c.Path,
		Type:        c.Type,
		Value:       c.Value,
		ModeValues:  c.ModeValues,
		Semantic:    c.Semantic,
		References:  c.References,
		Disabled:    !c.Enabled,
		Collection:  c.Collection,
		Tags:        c.Tags,
		Description: c.Description,
		HostID:      c.HostID,
	}
}

// Patch lists fields to change on update. Nil fields are left alone.
type Patch struct {
	Name        *string
	Path        []string
	Type        *Type
	Value       *Value
	ModeValues  map[string]Value
	Semantic    *Semantic
	References  *References
	Enabled     *bool
	Collection  *string
	Tags        []string
	Description *string
	HostID      *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }
