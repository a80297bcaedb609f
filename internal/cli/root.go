// Package cli provides the command-line interface for tokenkit.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/config"
	"github.com/jmylchreest/tokenkit/internal/version"
)

// rootOptions holds the global flags and what PersistentPreRunE loads.
type rootOptions struct {
	cfgFile string
	verbose bool
	quiet   bool

	cfg     config.Config
	cfgUsed string
	logger  hclog.Logger
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tokenkit",
		Short: "Design token generator and variable sync",
		Long: `tokenkit derives a layered design-token system (primitives, semantic
tokens and component tokens) from a few brand colours and scale settings,
exports it as JSON, YAML or CSS, and reconciles it with a host's variable
store through a host plugin binary.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.cfgFile, "config", "c", "", "config file (default ./.tokenkit.yaml or ~/.config/tokenkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&o.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().String("separator", "/", "path separator for generated tokens (/, . or -)")
	rootCmd.PersistentFlags().String("name", "", "design system name written to exports")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(o),
		newGenerateCmd(o),
		newExportCmd(o),
		newDiffCmd(o),
		newSyncCmd(o),
		newImportCmd(o),
		newThemesCmd(o),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads configuration and builds the logger. Changed flags on the
// running command override the file.
func (o *rootOptions) load(cmd *cobra.Command) error {
	level := hclog.Info
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}
	o.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "tokenkit",
		Level:  level,
		Output: cmd.ErrOrStderr(),
		Color:  hclog.AutoColor,
	})

	cfg, used, err := config.Load(o.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	o.cfg, o.cfgUsed = cfg, used
	if used != "" {
		o.logger.Debug("loaded config", "path", used)
	}
	return nil
}

// app builds a fresh app from the loaded config.
func (o *rootOptions) app() (*app, error) {
	return newApp(o.cfg, o.logger)
}

// printf writes to stdout unless --quiet is set.
func (o *rootOptions) printf(cmd *cobra.Command, format string, args ...any) {
	if o.quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, Go version and host protocol version.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.GetInfo())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newInitCmd(o *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ".tokenkit.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			o.printf(cmd, "✓ Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
