// Package protocol checks host protocol versions and detects how a host
// binary wants to be spoken to.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, label := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", label, parts[i])
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less orders versions numerically.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks a host's protocol version against this build.
// Rules:
// - Major version must match exactly (breaking changes).
// - The version must not be below plugin.MinCompatibleVersion.
// - Higher minor and patch versions are accepted.
func IsCompatible(hostVersion string) (bool, error) {
	v, err := Parse(hostVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse host version: %w", err)
	}
	current := GetCurrentVersion()
	if v.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: host is %s, tokenkit requires %d.x.x",
			v, current.Major,
		)
	}
	minVersion, err := Parse(plugin.MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if v.Less(minVersion) {
		return false, fmt.Errorf("host version %s is too old, minimum required is %s", v, minVersion)
	}
	return true, nil
}

// GetCurrentVersion returns plugin.ProtocolVersion parsed.
func GetCurrentVersion() Version {
	v, err := Parse(plugin.ProtocolVersion)
	if err != nil {
		// This should never happen since ProtocolVersion is a constant with valid format.
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
