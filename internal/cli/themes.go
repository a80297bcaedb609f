package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/config"
	"github.com/jmylchreest/tokenkit/internal/token"
)

func newThemesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List and edit user themes",
		Long: `Themes are brand variations. The system theme "default" uses the configured
brand colour and always exists; user themes are stored in the config file's
themes section and each adds its own light and/or dark modes.`,
	}
	cmd.AddCommand(newThemesListCmd(o), newThemesAddCmd(o), newThemesRemoveCmd(o))
	return cmd
}

func newThemesListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List themes and the modes they generate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := o.cfg.ThemeRegistry(o.logger)
			if err != nil {
				return err
			}
			return themesTable(reg.All()).Write(cmd.OutOrStdout())
		},
	}
}

func newThemesAddCmd(o *rootOptions) *cobra.Command {
	var tc config.ThemeConfig
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user theme to the config file",
		Example: `  tokenkit themes add --name Ocean --brand '#0EA5E9' --accent '#F97316' --neutral accent
  tokenkit themes add --name Midnight --brand '#6366F1' --modes dark`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			themes := append(append([]config.ThemeConfig(nil), o.cfg.Themes...), tc)
			return saveThemes(cmd, o, themes, fmt.Sprintf("Added theme %q", tc.Name))
		},
	}
	cmd.Flags().StringVar(&tc.Name, "name", "", "theme name")
	cmd.Flags().StringVar(&tc.Brand, "brand", "", "brand colour (hex)")
	cmd.Flags().StringVar(&tc.Accent, "accent", "", "accent colour (hex, defaults to the brand)")
	cmd.Flags().StringVar(&tc.Neutral, "neutral", "", "neutral tint strategy (none, brand, accent)")
	cmd.Flags().StringSliceVar(&tc.Modes, "modes", nil, "modes to generate (light, dark)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}

func newThemesRemoveCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a user theme from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(args[0], token.DefaultThemeID) {
				return token.ErrSystemTheme
			}
			var themes []config.ThemeConfig
			for _, t := range o.cfg.Themes {
				if !strings.EqualFold(t.Name, args[0]) {
					themes = append(themes, t)
				}
			}
			if len(themes) == len(o.cfg.Themes) {
				return fmt.Errorf("%w: theme %q", token.ErrNotFound, args[0])
			}
			return saveThemes(cmd, o, themes, fmt.Sprintf("Removed theme %q", args[0]))
		},
	}
}

// saveThemes validates the new theme list against a fresh registry and
// writes it to the config file in use.
func saveThemes(cmd *cobra.Command, o *rootOptions, themes []config.ThemeConfig, done string) error {
	cfg := o.cfg
	cfg.Themes = themes
	if _, err := cfg.ThemeRegistry(o.logger); err != nil {
		return err
	}

	path := o.cfgUsed
	if path == "" {
		path = ".tokenkit.yaml"
	}
	if err := config.SaveThemes(path, themes); err != nil {
		return err
	}
	o.cfg = cfg
	o.printf(cmd, "✓ %s in %s\n", done, path)
	return nil
}

// themesTable lists themes with their modes.
func themesTable(themes []token.Theme) *Table {
	t := NewTable("ID", "Name", "Brand", "Accent", "Neutral", "Modes")
	for _, th := range themes {
		accent := ""
		if th.Accent != nil {
			accent = th.Accent.Hex
		}
		var modes []string
		for _, m := range th.Modes() {
			modes = append(modes, m.Name())
		}
		name := th.Name
		if th.System {
			name += " (system)"
		}
		t.AddRow(th.ID, name, th.Brand.Hex, accent, string(th.Neutral), fmt.Sprint(modes))
	}
	return t
}
