package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

// Top-level groups of an exported document.
const (
	GroupPrimitives = "primitives"
	GroupTokens     = "tokens"
	GroupComponents = "components"
)

// ExtensionKey namespaces tokenkit data under $extensions.
const ExtensionKey = "tokenkit"

// Group returns the top-level group a collection is exported under.
func Group(collection string) string {
	switch collection {
	case token.CollectionTokens:
		return GroupTokens
	case token.CollectionComponents:
		return GroupComponents
	}
	return GroupPrimitives
}

// Document is an exported token tree. Groups are nested maps keyed by path
// segment; leaves carry $type and $value.
type Document map[string]any

// Build assembles the document for every enabled token. Tokens with
// references export the light reference as an alias and keep their
// materialised values per mode under $extensions.
func Build(src Source) (Document, error) {
	doc := Document{
		"$version":      FormatVersion,
		"$name":         src.Name,
		"$timestamp":    src.timestamp(),
		GroupPrimitives: map[string]any{},
		GroupTokens:     map[string]any{},
		GroupComponents: map[string]any{},
	}
	for _, t := range src.Store.Filter(token.Filter{Enabled: token.Ptr(true)}) {
		node := doc[Group(t.Collection)].(map[string]any)
		for _, seg := range t.Path {
			child, ok := node[seg]
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			group, ok := child.(map[string]any)
			if !ok || isLeaf(group) {
				return nil, fmt.Errorf("%s: path segment %q is already a token", t.FullPath, seg)
			}
			node = group
		}
		if _, taken := node[t.Name]; taken {
			return nil, fmt.Errorf("%s: name collides with an existing group or token", t.FullPath)
		}
		node[t.Name] = leaf(t, src.Store)
	}
	return doc, nil
}

func isLeaf(m map[string]any) bool {
	_, ok := m["$value"]
	return ok
}

func leaf(t token.Token, s *token.Store) map[string]any {
	out := map[string]any{
		"$type":  string(t.Type),
		"$value": Value(t.Value),
	}
	if t.Description != "" {
		out["$description"] = t.Description
	}

	ext := map[string]any{"collection": t.Collection}
	if len(t.ModeValues) > 0 {
		modes := make(map[string]any, len(t.ModeValues))
		for m, v := range t.ModeValues {
			modes[m] = Value(v)
		}
		ext["modes"] = modes
	}
	if t.References != nil && t.References.Light != "" {
		light := Reference(s, t.References.Light)
		out["$value"] = light
		refs := map[string]any{"light": light}
		if t.References.Dark != "" {
			refs["dark"] = Reference(s, t.References.Dark)
		}
		ext["references"] = refs
	}
	out["$extensions"] = map[string]any{ExtensionKey: ext}
	return out
}

// Reference formats a reference to the token at fullPath as an alias built
// from its path segments and name, so a separator inside a name is kept.
// Paths the store does not know fall back to Alias.
func Reference(s *token.Store, fullPath string) string {
	t, ok := s.GetByPath(fullPath)
	if !ok {
		return Alias(fullPath, s.Separator())
	}
	return "{" + strings.Join(append(slices.Clone(t.Path), t.Name), ".") + "}"
}

// Alias formats a full path as a {dot.separated} reference.
func Alias(fullPath, sep string) string {
	return "{" + strings.ReplaceAll(fullPath, sep, ".") + "}"
}

// Value renders a token value for a document. Colours are hex, with an
// alpha channel only when not opaque.
func Value(v token.Value) any {
	switch v.Kind {
	case token.TypeColor:
		if v.Color.RGBA.A < 1 {
			return colour.RGBAToHex8(v.Color.RGBA)
		}
		return v.Color.Hex
	case token.TypeNumber:
		return v.Number
	case token.TypeBoolean:
		return v.Bool
	}
	return v.Text
}
