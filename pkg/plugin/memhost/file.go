package memhost

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// LoadFile reads a snapshot written by SaveFile. A missing file is an empty
// project.
func LoadFile(path string) (plugin.ProjectSnapshot, error) {
	var snap plugin.ProjectSnapshot
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if errors.Is(err, fs.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// SaveFile writes snap as YAML, replacing path atomically.
func SaveFile(path string, snap plugin.ProjectSnapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
