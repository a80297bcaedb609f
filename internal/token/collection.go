package token

import "slices"

// Well-known collection names.
const (
	CollectionPrimitives = "Primitives"
	CollectionTokens     = "Tokens"
	CollectionComponents = "Components"
	CollectionTypography = "Typography"
	CollectionSpacing    = "Spacing"
	CollectionGap        = "Gap"
	CollectionIconSize   = "Icon Size"
	CollectionRadius     = "Radius"
)

// Default mode names.
const (
	ModeValue   = "value"
	ModeLight   = "light"
	ModeDark    = "dark"
	ModeDesktop = "desktop"
	ModeTablet  = "tablet"
	ModeMobile  = "mobile"
)

// Collection is a named partition of tokens with an ordered list of modes.
type Collection struct {
	Name  string   `json:"name" yaml:"name"`
	Modes []string `json:"modes" yaml:"modes"`

	// TokenCount is cached and recomputed after membership changes.
	TokenCount int `json:"tokenCount" yaml:"tokenCount"`
}

// HasMode reports whether the collection declares mode.
func (c Collection) HasMode(mode string) bool {
	return slices.Contains(c.Modes, mode)
}

// DefaultCollections returns the collections every store starts with.
// Tokens and Components receive their modes from the theme registry.
func DefaultCollections() []Collection {
	breakpoints := []string{ModeDesktop, ModeTablet, ModeMobile}
	return []Collection{
		{Name: CollectionPrimitives, Modes: []string{ModeValue}},
		{Name: CollectionTokens, Modes: []string{ModeLight, ModeDark}},
		{Name: CollectionComponents, Modes: []string{ModeLight, ModeDark}},
		{Name: CollectionTypography, Modes: []string{ModeValue}},
		{Name: CollectionSpacing, Modes: slices.Clone(breakpoints)},
		{Name: CollectionGap, Modes: slices.Clone(breakpoints)},
		{Name: CollectionIconSize, Modes: slices.Clone(breakpoints)},
		{Name: CollectionRadius, Modes: []string{ModeValue}},
	}
}
