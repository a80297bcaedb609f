package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

type generateOptions struct {
	collections []string
	list        bool
	query       string
	preview     bool
}

func newGenerateCmd(o *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the token system and summarise it",
		Long: `Generate runs every derivation pipeline (theme palettes, extra palettes,
typography, spacing, radius, shadow, border, semantic and component tokens)
from the loaded configuration and prints a per-collection summary.

Examples:
  # Summary of every collection
  tokenkit generate

  # List Tokens with colour swatches
  tokenkit generate --list --collection Tokens --preview

  # Search generated tokens
  tokenkit generate --list --query primary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, o, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.collections, "collection", nil, "limit output to these collections")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list tokens instead of the summary")
	cmd.Flags().StringVar(&opts.query, "query", "", "only list tokens matching this search")
	cmd.Flags().BoolVarP(&opts.preview, "preview", "p", false, "show colour swatches (terminals only)")
	return cmd
}

func runGenerate(cmd *cobra.Command, o *rootOptions, opts *generateOptions) error {
	a, err := o.app()
	if err != nil {
		return err
	}
	report, err := a.generate()
	if err != nil {
		return fmt.Errorf("failed to generate tokens: %w", err)
	}

	collections := opts.collections
	if len(collections) == 0 {
		collections = a.collections()
	}
	for _, name := range collections {
		if _, ok := a.store.Collection(name); !ok {
			return fmt.Errorf("unknown collection: %s", name)
		}
	}

	out := cmd.OutOrStdout()
	if !opts.list {
		t := NewTable("Collection", "Modes", "Tokens")
		for _, name := range collections {
			c, _ := a.store.Collection(name)
			t.AddRow(c.Name, strings.Join(c.Modes, ", "), strconv.Itoa(c.TokenCount))
		}
		if err := t.Write(out); err != nil {
			return err
		}
		o.printf(cmd, "\n✓ Generated %d token(s) across %d theme(s)\n", len(report.Tokens), len(a.themes.All()))
		if n := len(report.Placeholders); n > 0 {
			o.printf(cmd, "⚠ %d unresolved reference(s) were filled with a placeholder\n", n)
		}
		return nil
	}

	swatches := opts.preview && colour.SupportsANSI(out)
	wanted := make(map[string]bool, len(collections))
	for _, c := range collections {
		wanted[c] = true
	}
	var tokens []token.Token
	if opts.query != "" {
		tokens = a.store.Search(opts.query)
	} else {
		tokens = a.store.All()
	}
	return tokenTable(tokens, wanted, swatches).Write(out)
}

// tokenTable lists tokens from the wanted collections.
func tokenTable(tokens []token.Token, wanted map[string]bool, swatches bool) *Table {
	headers := []string{"Path", "Type", "Value", "Collection"}
	if swatches {
		headers = append([]string{""}, headers...)
	}
	t := NewTable(headers...)
	for _, tok := range tokens {
		if !wanted[tok.Collection] {
			continue
		}
		value := tok.Value.String()
		if tok.References != nil {
			value += " → " + tok.References.Light
		}
		if !tok.Enabled {
			value += " (disabled)"
		}
		row := []string{tok.FullPath, string(tok.Type), value, tok.Collection}
		if swatches {
			swatch := "    "
			if tok.Value.Kind == token.TypeColor {
				swatch = colour.Swatch(tok.Value.Color.RGBA, 4)
			}
			row = append([]string{swatch}, row...)
		}
		t.AddRow(row...)
	}
	return t
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
