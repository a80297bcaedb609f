package export

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// JSONExporter writes the document as a single JSON file.
type JSONExporter struct {
	filename string
	indent   int
}

// NewJSON creates a JSON exporter with defaults.
func NewJSON() *JSONExporter {
	return &JSONExporter{filename: "tokens.json", indent: 2}
}

// Name returns the exporter name.
func (e *JSONExporter) Name() string { return "json" }

// Description returns the exporter description.
func (e *JSONExporter) Description() string {
	return "Design tokens as nested JSON with $type/$value leaves"
}

// RegisterFlags registers exporter-specific flags.
func (e *JSONExporter) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.filename, "json.filename", e.filename, "JSON output filename")
	cmd.Flags().IntVar(&e.indent, "json.indent", e.indent, "JSON indent width (0 for compact)")
}

// Validate checks the configuration.
func (e *JSONExporter) Validate() error {
	if e.filename == "" {
		return fmt.Errorf("json.filename must not be empty")
	}
	if e.indent < 0 || e.indent > 8 {
		return fmt.Errorf("json.indent must be between 0 and 8, got %d", e.indent)
	}
	return nil
}

// Generate renders the store.
func (e *JSONExporter) Generate(src Source) (map[string][]byte, error) {
	doc, err := Build(src)
	if err != nil {
		return nil, err
	}

	var data []byte
	if e.indent == 0 {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", fmt.Sprintf("%*s", e.indent, ""))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return map[string][]byte{e.filename: append(data, '\n')}, nil
}
