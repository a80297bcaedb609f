// Package security provides path validation for files tokenkit writes and
// binaries it launches.
package security

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ValidateFilePath checks that an exporter's output name stays inside
// baseDir once joined to it.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute output paths are not allowed: %s", filePath)
	}

	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		if part == ".." {
			return fmt.Errorf("output path contains directory traversal (..): %s", filePath)
		}
	}

	cleanBase := filepath.Clean(baseDir)
	cleanFinal := filepath.Clean(filepath.Join(baseDir, filePath))
	if cleanBase != "." && !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("output path would escape %s", baseDir)
	}

	return nil
}

// ResolveHostPath locates a host binary, searching PATH when the path has
// no separator, and checks it is an executable regular file.
func ResolveHostPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty host path")
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("host binary not usable: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid host path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("host path is not a regular file: %s", resolved)
	}

	return resolved, nil
}
