// Package version provides build-time version information for tokenkit.
// Version information is injected at build time using ldflags.
package version

import (
	"fmt"
	"runtime"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

var (
	// Version is the semantic version of the application.
	// Injected at build time via: -ldflags "-X github.com/jmylchreest/tokenkit/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

// Info holds all version information for the application.
type Info struct {
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	Date            string `json:"date"`
	GoVersion       string `json:"go_version"`
	Platform        string `json:"platform"`
	ProtocolVersion string `json:"protocol_version"`
}

// GetInfo returns all version information as a structured type.
func GetInfo() Info {
	return Info{
		Version:         Version,
		Commit:          Commit,
		Date:            Date,
		GoVersion:       GoVersion,
		Platform:        fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		ProtocolVersion: plugin.ProtocolVersion,
	}
}

// String returns a human-readable version string.
func String() string {
	info := GetInfo()
	if Commit != "unknown" && Date != "unknown" {
		return fmt.Sprintf("tokenkit version %s (commit: %s, built: %s, %s, %s, host protocol %s)",
			info.Version, info.Commit[:min(8, len(info.Commit))], info.Date, info.GoVersion, info.Platform, info.ProtocolVersion)
	}
	return fmt.Sprintf("tokenkit version %s (%s, %s, host protocol %s)", info.Version, info.GoVersion, info.Platform, info.ProtocolVersion)
}

// Short returns a short version string suitable for CLI output.
func Short() string {
	return Version
}
