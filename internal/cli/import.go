package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/sync"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
	"github.com/jmylchreest/tokenkit/pkg/plugin/memhost"
)

type importOptions struct {
	snapshot string
	save     string
	list     bool
}

func newImportCmd(o *rootOptions) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a host project's managed variables as tokens",
		Long: `Import reads every managed collection of a host project, either from a
running host (--host) or from a snapshot file (--snapshot), and converts its
variables into tokens.

Examples:
  # Inspect what a host holds
  tokenkit import --host ./my-host --list

  # Keep an offline copy for "tokenkit diff"
  tokenkit import --host ./my-host --save project.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, o, opts)
		},
	}
	cmd.Flags().String("host", "", "host binary (overrides sync.host)")
	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "read the project from a snapshot file instead of a host")
	cmd.Flags().StringVar(&opts.save, "save", "", "write the fetched project to this snapshot file")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list imported tokens")
	return cmd
}

func runImport(cmd *cobra.Command, o *rootOptions, opts *importOptions) error {
	a, err := o.app()
	if err != nil {
		return err
	}

	snap, err := fetchProject(cmd, o, a, opts)
	if err != nil {
		return err
	}
	if opts.save != "" {
		if err := memhost.SaveFile(opts.save, snap); err != nil {
			return err
		}
		o.printf(cmd, "✓ Saved %s\n", opts.save)
	}

	report := sync.NewImporter(a.store, a.logger).Import(snap)
	for _, e := range report.Errors {
		a.logger.Warn("import error", "error", e)
	}

	out := cmd.OutOrStdout()
	if opts.list {
		wanted := make(map[string]bool, len(report.Collections))
		for _, c := range report.Collections {
			wanted[c] = true
		}
		if err := tokenTable(a.store.All(), wanted, false).Write(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	} else {
		t := NewTable("Collection", "Modes", "Tokens")
		for _, name := range report.Collections {
			c, _ := a.store.Collection(name)
			t.AddRow(c.Name, strings.Join(c.Modes, ", "), strconv.Itoa(c.TokenCount))
		}
		if err := t.Write(out); err != nil {
			return err
		}
	}
	o.printf(cmd, "✓ Imported %d token(s), skipped %d, %d error(s)\n", report.Imported, report.Skipped, len(report.Errors))
	return nil
}

func fetchProject(cmd *cobra.Command, o *rootOptions, a *app, opts *importOptions) (plugin.ProjectSnapshot, error) {
	if opts.snapshot != "" {
		return memhost.LoadFile(opts.snapshot)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	exec, host, err := a.connect(ctx, o.verbose)
	if err != nil {
		return plugin.ProjectSnapshot{}, err
	}
	defer exec.Close()

	return a.syncClient(host).Project(ctx)
}
