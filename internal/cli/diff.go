package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/sync"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
	"github.com/jmylchreest/tokenkit/pkg/plugin/memhost"
)

// reconcileOptions are shared by diff and sync.
type reconcileOptions struct {
	collections []string
	apply       bool
	all         bool
	asJSON      bool
}

func (r *reconcileOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&r.collections, "collection", nil, "collections to reconcile (default: every non-empty collection)")
	cmd.Flags().Bool("include-deletes", false, "delete host variables missing locally")
	cmd.Flags().BoolVar(&r.all, "all", false, "list unchanged variables too")
	cmd.Flags().BoolVar(&r.asJSON, "json", false, "print diffs as JSON")
}

type diffOptions struct {
	reconcileOptions
	snapshot string
}

func newDiffCmd(o *rootOptions) *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff generated tokens against a host snapshot file",
		Long: `Diff generates the token system and compares each collection with a host
project snapshot (YAML or JSON, as written by tokenkit-memhost or
"tokenkit import --save"), without contacting a host.

With --write the changes are applied to the snapshot and saved back.

Examples:
  tokenkit diff --snapshot project.yaml
  tokenkit diff --snapshot project.yaml --collection Tokens --include-deletes
  tokenkit diff --snapshot project.yaml --write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(cmd, o, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "host project snapshot file")
	cmd.Flags().BoolVarP(&opts.apply, "write", "w", false, "apply the diff to the snapshot and save it")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runDiff(cmd *cobra.Command, o *rootOptions, opts *diffOptions) error {
	snap, err := memhost.LoadFile(opts.snapshot)
	if err != nil {
		return err
	}
	host := memhost.FromSnapshot(plugin.HostProtocolGoPlugin, snap)

	a, err := o.app()
	if err != nil {
		return err
	}
	if _, err := a.generate(); err != nil {
		return fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := reconcile(cmd, o, a, a.syncClient(host), &opts.reconcileOptions); err != nil {
		return err
	}
	if opts.apply {
		if err := memhost.SaveFile(opts.snapshot, host.Snapshot()); err != nil {
			return err
		}
		o.printf(cmd, "✓ Saved %s\n", opts.snapshot)
	}
	return nil
}

// reconcile diffs each collection through client and applies when asked.
func reconcile(cmd *cobra.Command, o *rootOptions, a *app, client *sync.Client, opts *reconcileOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	collections := opts.collections
	if len(collections) == 0 {
		collections = a.collections()
	}

	out := cmd.OutOrStdout()
	var reports []diffReport
	for _, name := range collections {
		d, err := client.LoadDiff(ctx, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		report := newDiffReport(d, opts.all)

		if opts.apply && (d.Summary.Actionable() > 0 || len(d.ModesToAdd) > 0) {
			res, err := client.Apply(ctx)
			if err != nil {
				return fmt.Errorf("%s: apply failed: %w", name, err)
			}
			report.Result = &res
			for _, e := range res.Errors {
				a.logger.Warn("change failed", "collection", name, "error", e)
			}
			if !res.Success {
				a.logger.Error("apply failed", "collection", name, "errors", len(res.Errors))
			}
		}

		if opts.asJSON {
			reports = append(reports, report)
			continue
		}
		if err := report.write(out, o.quiet); err != nil {
			return err
		}
	}
	if opts.asJSON {
		return writeJSON(out, reports)
	}
	return nil
}

type changeReport struct {
	Action   plugin.ChangeAction `json:"action"`
	Name     string              `json:"name"`
	Type     plugin.VariableType `json:"type"`
	Values   map[string]string   `json:"values,omitempty"`
	Previous map[string]string   `json:"previous,omitempty"`
}

type diffReport struct {
	Collection string              `json:"collection"`
	Summary    sync.Summary        `json:"summary"`
	ModesToAdd []string            `json:"modesToAdd,omitempty"`
	Changes    []changeReport      `json:"changes"`
	Result     *plugin.ApplyResult `json:"result,omitempty"`
}

func newDiffReport(d sync.SyncDiff, all bool) diffReport {
	r := diffReport{Collection: d.Collection, Summary: d.Summary, ModesToAdd: d.ModesToAdd, Changes: []changeReport{}}
	for _, c := range d.Changes {
		if c.Action == plugin.ActionUnchanged && !all {
			continue
		}
		r.Changes = append(r.Changes, changeReport{
			Action:   c.Action,
			Name:     c.Name,
			Type:     c.Type,
			Values:   formatValues(c.Values),
			Previous: formatValues(c.Previous),
		})
	}
	return r
}

func formatValues(values map[string]plugin.VariableValue) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for mode, v := range values {
		out[mode] = v.Format()
	}
	return out
}

var actionMarks = map[plugin.ChangeAction]string{
	plugin.ActionAdd:       "+",
	plugin.ActionUpdate:    "~",
	plugin.ActionDelete:    "-",
	plugin.ActionUnchanged: "=",
}

func (r diffReport) write(w io.Writer, quiet bool) error {
	s := r.Summary
	fmt.Fprintf(w, "%s: %d to add, %d to update, %d to delete, %d unchanged\n",
		r.Collection, s.Add, s.Update, s.Delete, s.Unchanged)
	if len(r.ModesToAdd) > 0 {
		fmt.Fprintf(w, "  modes to add: %s\n", strings.Join(r.ModesToAdd, ", "))
	}
	if !quiet && len(r.Changes) > 0 {
		t := NewTable("", "Variable", "Type", "Modes")
		for _, c := range r.Changes {
			t.AddRow(actionMarks[c.Action], c.Name, string(c.Type), strconv.Itoa(len(c.Values)))
		}
		if err := t.Write(w); err != nil {
			return err
		}
	}
	if res := r.Result; res != nil {
		status := "✓"
		if !res.Success {
			status = "✗"
		} else if res.Partial() {
			status = "⚠"
		}
		fmt.Fprintf(w, "%s applied: %d created, %d updated, %d deleted, %d error(s)\n",
			status, res.Created, res.Updated, res.Deleted, len(res.Errors))
	}
	fmt.Fprintln(w)
	return nil
}
