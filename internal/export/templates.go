package export

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-hclog"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// TemplateLoader reads exporter templates, preferring an override directory
// over the embedded defaults.
type TemplateLoader struct {
	customDir string
	logger    hclog.Logger
}

// NewTemplateLoader creates a loader. An empty customDir uses only the
// embedded templates.
func NewTemplateLoader(customDir string, logger hclog.Logger) *TemplateLoader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &TemplateLoader{customDir: customDir, logger: logger.Named("templates")}
}

// Load reads filename and reports whether it came from the override directory.
func (l *TemplateLoader) Load(filename string) (content []byte, fromCustom bool, err error) {
	if l.customDir != "" {
		custom := filepath.Join(l.customDir, filename)
		if content, err := os.ReadFile(custom); err == nil {
			l.logger.Debug("using custom template", "path", custom)
			return content, true, nil
		}
	}

	content, err = embedded.ReadFile("templates/" + filename)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load template %q: %w", filename, err)
	}
	return content, false, nil
}

// Embedded lists the embedded template filenames.
func (l *TemplateLoader) Embedded() []string {
	entries, err := fs.ReadDir(embedded, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

// Dump writes every embedded template into the override directory so it can
// be edited. Existing files are kept unless force is set.
func (l *TemplateLoader) Dump(force bool) ([]string, error) {
	if l.customDir == "" {
		return nil, fmt.Errorf("no template directory configured")
	}
	if err := os.MkdirAll(l.customDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", l.customDir, err)
	}

	var written []string
	for _, name := range l.Embedded() {
		out := filepath.Join(l.customDir, name)
		if !force {
			if _, err := os.Stat(out); err == nil {
				l.logger.Debug("keeping existing template", "path", out)
				continue
			}
		}
		content, err := embedded.ReadFile("templates/" + name)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write template to %q: %w", out, err)
		}
		written = append(written, out)
	}
	return written, nil
}
