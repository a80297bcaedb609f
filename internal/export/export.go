// Package export renders the token store into files.
package export

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/token"
)

// FormatVersion is written to the $version envelope field.
const FormatVersion = "1.0.0"

// Source is what an exporter renders.
type Source struct {
	Store *token.Store

	// Name is written to the $name envelope field.
	Name string

	// Timestamp is written to the $timestamp envelope field. Zero means now.
	Timestamp time.Time
}

func (s Source) timestamp() string {
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.UTC().Format(time.RFC3339)
}

// Exporter generates output files from the store.
type Exporter interface {
	// Name returns the exporter's name (e.g., "json", "css").
	Name() string

	// Description returns a human-readable description of the exporter.
	Description() string

	// Generate creates output file(s) from the store.
	// Returns map of filename -> content.
	Generate(src Source) (map[string][]byte, error)

	// RegisterFlags registers exporter-specific flags with cobra command.
	RegisterFlags(cmd *cobra.Command)

	// Validate checks if the exporter configuration is valid.
	Validate() error
}

// Registry holds all registered exporters.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry creates a new exporter registry.
func NewRegistry() *Registry {
	return &Registry{
		exporters: make(map[string]Exporter),
	}
}

// NewDefaultRegistry returns a registry with every built-in exporter.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewJSON())
	r.Register(NewYAML())
	r.Register(NewCSS())
	return r
}

// Register adds an exporter to the registry.
func (r *Registry) Register(e Exporter) {
	r.exporters[e.Name()] = e
}

// Get retrieves an exporter by name.
func (r *Registry) Get(name string) (Exporter, bool) {
	e, ok := r.exporters[name]
	return e, ok
}

// List returns all registered exporter names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.exporters))
	for name := range r.exporters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
