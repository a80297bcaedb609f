package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/export"
	"github.com/jmylchreest/tokenkit/internal/security"
)

type exportOptions struct {
	dryRun bool
}

func newExportCmd(o *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	registry := export.NewDefaultRegistry()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate tokens and write them to files",
		Long: `Export generates the token system and writes it with one or more exporters.
Only enabled tokens are written.

Exporters:
` + exporterHelp(registry) + `
Examples:
  # JSON into ./tokens
  tokenkit export

  # JSON and CSS custom properties into a build directory
  tokenkit export --format json,css --out build/tokens

  # Dark mode under a class instead of a data attribute
  tokenkit export --format css --css.mode-selector '.theme-%s'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, o, opts, registry)
		},
	}
	cmd.Flags().StringSliceP("format", "f", []string{"json"}, "exporters to run (comma-separated)")
	cmd.Flags().StringP("out", "o", "tokens", "output directory")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be written")

	for _, name := range registry.List() {
		e, _ := registry.Get(name)
		e.RegisterFlags(cmd)
	}
	return cmd
}

func exporterHelp(r *export.Registry) string {
	var b strings.Builder
	for _, name := range r.List() {
		e, _ := r.Get(name)
		fmt.Fprintf(&b, "  %-6s - %s\n", e.Name(), e.Description())
	}
	return b.String()
}

func runExport(cmd *cobra.Command, o *rootOptions, opts *exportOptions, registry *export.Registry) error {
	var exporters []export.Exporter
	for _, name := range o.cfg.Export.Formats {
		e, ok := registry.Get(name)
		if !ok {
			return fmt.Errorf("unknown export format: %s (available: %s)", name, strings.Join(registry.List(), ", "))
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		exporters = append(exporters, e)
	}
	if len(exporters) == 0 {
		return fmt.Errorf("no export formats selected")
	}
	if css, ok := registry.Get("css"); ok {
		css.(*export.CSSExporter).SetLogger(o.logger)
		if dir := o.cfg.Export.TemplateDir; dir != "" && !cmd.Flags().Changed("css.template-dir") {
			if err := cmd.Flags().Set("css.template-dir", dir); err != nil {
				return err
			}
		}
	}

	a, err := o.app()
	if err != nil {
		return err
	}
	if _, err := a.generate(); err != nil {
		return fmt.Errorf("failed to generate tokens: %w", err)
	}

	src := a.exportSource()
	written := 0
	for _, e := range exporters {
		files, err := e.Generate(src)
		if err != nil {
			return fmt.Errorf("%s export failed: %w", e.Name(), err)
		}
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			if err := security.ValidateFilePath(name, o.cfg.Export.Dir); err != nil {
				return fmt.Errorf("%s export: %w", e.Name(), err)
			}
			path := filepath.Join(o.cfg.Export.Dir, name)
			if opts.dryRun {
				o.printf(cmd, "  Would write: %s (%d bytes)\n", path, len(files[name]))
				continue
			}
			if err := writeFile(path, files[name]); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			o.printf(cmd, "  ├─ %s (%d bytes)\n", path, len(files[name]))
			written++
		}
	}
	if !opts.dryRun {
		o.printf(cmd, "\n✓ Done! Wrote %d file(s)\n", written)
	}
	return nil
}

// writeFile writes content, creating parent directories. A leading ~/ is
// expanded to the home directory.
func writeFile(path string, content []byte) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}
