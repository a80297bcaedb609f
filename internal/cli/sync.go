package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/sync"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

type syncOptions struct {
	reconcileOptions
	typography bool
}

func newSyncCmd(o *rootOptions) *cobra.Command {
	opts := &syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile generated tokens with a host's variables",
		Long: `Sync launches a host binary (go-plugin or json-stdio, detected via
--plugin-info), diffs every collection against the host's variables and,
with --apply, sends the adds, updates and (with --include-deletes) deletes.

Examples:
  # Preview
  tokenkit sync --host ./tokenkit-memhost

  # Apply, including deletes, and push typography styles
  tokenkit sync --host ./my-host --apply --include-deletes --typography`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, o, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().String("host", "", "host binary (overrides sync.host)")
	cmd.Flags().Duration("timeout", sync.DefaultTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "apply the changes")
	cmd.Flags().BoolVar(&opts.typography, "typography", false, "also send typography variables and text styles (requires --apply)")
	return cmd
}

func runSync(cmd *cobra.Command, o *rootOptions, opts *syncOptions) error {
	if opts.typography && !opts.apply {
		return fmt.Errorf("--typography requires --apply")
	}
	a, err := o.app()
	if err != nil {
		return err
	}
	if _, err := a.generate(); err != nil {
		return fmt.Errorf("failed to generate tokens: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	exec, host, err := a.connect(ctx, o.verbose)
	if err != nil {
		return err
	}
	defer exec.Close()

	client := a.syncClient(host)
	if err := reconcile(cmd, o, a, client, &opts.reconcileOptions); err != nil {
		return err
	}
	if !opts.typography {
		return nil
	}
	return sendTypography(ctx, cmd, o, a, client)
}

// typographyRequests are sent in this order; styles alias the variables.
var typographyRequests = []plugin.MessageType{
	plugin.MsgCreateTypographyVariables,
	plugin.MsgCreateTextStyles,
	plugin.MsgCreateSemanticTypography,
}

func sendTypography(ctx context.Context, cmd *cobra.Command, o *rootOptions, a *app, client *sync.Client) error {
	for _, kind := range typographyRequests {
		payload, err := sync.TypographyPayload(a.store, kind)
		if err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		if err := client.CreateTypography(ctx, kind, payload); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		o.printf(cmd, "✓ %s (%d variable(s), %d style(s))\n", kind, len(payload.Variables), len(payload.TextStyles))
	}
	return nil
}
