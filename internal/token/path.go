package token

import (
	"fmt"
	"slices"
	"strings"
)

// Supported path separators.
const (
	SeparatorSlash = "/"
	SeparatorDot   = "."
	SeparatorDash  = "-"
)

// ValidSeparator reports whether sep is one of the supported separators.
func ValidSeparator(sep string) bool {
	return sep == SeparatorSlash || sep == SeparatorDot || sep == SeparatorDash
}

// CheckSeparator returns an error for unsupported separators.
func CheckSeparator(sep string) error {
	if !ValidSeparator(sep) {
		return fmt.Errorf("invalid separator %q (must be one of %q, %q, %q)", sep, SeparatorSlash, SeparatorDot, SeparatorDash)
	}
	return nil
}

// BuildFullPath joins path and name with sep.
func BuildFullPath(path []string, name, sep string) string {
	return strings.Join(append(slices.Clone(path), name), sep)
}

// ParseFullPath splits fullPath on sep; the final segment is the name.
func ParseFullPath(fullPath, sep string) (path []string, name string) {
	parts := strings.Split(fullPath, sep)
	last := len(parts) - 1
	return parts[:last:last], parts[last]
}
