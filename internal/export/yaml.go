package export

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the document as a single YAML file.
type YAMLExporter struct {
	filename string
}

// NewYAML creates a YAML exporter with defaults.
func NewYAML() *YAMLExporter {
	return &YAMLExporter{filename: "tokens.yaml"}
}

// Name returns the exporter name.
func (e *YAMLExporter) Name() string { return "yaml" }

// Description returns the exporter description.
func (e *YAMLExporter) Description() string {
	return "Design tokens as nested YAML, same shape as the json exporter"
}

// RegisterFlags registers exporter-specific flags.
func (e *YAMLExporter) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.filename, "yaml.filename", e.filename, "YAML output filename")
}

// Validate checks the configuration.
func (e *YAMLExporter) Validate() error {
	if e.filename == "" {
		return fmt.Errorf("yaml.filename must not be empty")
	}
	return nil
}

// Generate renders the store.
func (e *YAMLExporter) Generate(src Source) (map[string][]byte, error) {
	doc, err := Build(src)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return map[string][]byte{e.filename: data}, nil
}
