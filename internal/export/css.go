package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tokenkit/internal/colour"
	"github.com/jmylchreest/tokenkit/internal/token"
)

const cssTemplate = "tokens.css.tmpl"

// CSSExporter writes custom properties. The first mode of each collection
// goes under the root selector; every other mode gets its own block.
type CSSExporter struct {
	filename     string
	root         string
	modeSelector string
	prefix       string
	templateDir  string
	logger       hclog.Logger
}

// NewCSS creates a CSS exporter with defaults.
func NewCSS() *CSSExporter {
	return &CSSExporter{
		filename:     "tokens.css",
		root:         ":root",
		modeSelector: `[data-theme="%s"]`,
		logger:       hclog.NewNullLogger(),
	}
}

// SetLogger sets the logger used for template resolution.
func (e *CSSExporter) SetLogger(l hclog.Logger) { e.logger = l }

// Name returns the exporter name.
func (e *CSSExporter) Name() string { return "css" }

// Description returns the exporter description.
func (e *CSSExporter) Description() string {
	return "CSS custom properties with one selector block per mode"
}

// RegisterFlags registers exporter-specific flags.
func (e *CSSExporter) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.filename, "css.filename", e.filename, "CSS output filename")
	cmd.Flags().StringVar(&e.root, "css.root", e.root, "Selector for first-mode values")
	cmd.Flags().StringVar(&e.modeSelector, "css.mode-selector", e.modeSelector, "Selector format for other modes (%s is the mode name)")
	cmd.Flags().StringVar(&e.prefix, "css.prefix", e.prefix, "Prefix for every custom property name")
	cmd.Flags().StringVar(&e.templateDir, "css.template-dir", e.templateDir, "Directory holding a "+cssTemplate+" override")
}

// Validate checks the configuration.
func (e *CSSExporter) Validate() error {
	if e.filename == "" {
		return fmt.Errorf("css.filename must not be empty")
	}
	if e.root == "" {
		return fmt.Errorf("css.root must not be empty")
	}
	if strings.Count(e.modeSelector, "%s") != 1 {
		return fmt.Errorf("css.mode-selector must contain exactly one %%s, got %q", e.modeSelector)
	}
	return nil
}

type cssVar struct {
	Name  string
	Value string
}

type cssBlock struct {
	Selector string
	Comment  string
	Vars     []cssVar
}

type cssData struct {
	Name      string
	Timestamp string
	Blocks    []cssBlock
}

// Generate renders the store.
func (e *CSSExporter) Generate(src Source) (map[string][]byte, error) {
	content, fromCustom, err := NewTemplateLoader(e.templateDir, e.logger).Load(cssTemplate)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(cssTemplate).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template (custom=%t): %w", fromCustom, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, e.data(src)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return map[string][]byte{e.filename: buf.Bytes()}, nil
}

func (e *CSSExporter) data(src Source) cssData {
	root := cssBlock{Selector: e.root}
	var modes []*cssBlock
	byMode := map[string]*cssBlock{}

	sep := src.Store.Separator()
	for _, c := range src.Store.Collections() {
		for _, t := range src.Store.Filter(token.Filter{Collection: c.Name, Enabled: token.Ptr(true)}) {
			name := e.VarName(t.FullPath, sep)
			first := t.Value
			if len(c.Modes) > 0 {
				first = t.ValueForMode(c.Modes[0])
			}
			root.Vars = append(root.Vars, cssVar{Name: name, Value: CSSValue(t, first)})

			if len(c.Modes) < 2 {
				continue
			}
			for _, m := range c.Modes[1:] {
				b, ok := byMode[m]
				if !ok {
					b = &cssBlock{Selector: fmt.Sprintf(e.modeSelector, m), Comment: m}
					byMode[m] = b
					modes = append(modes, b)
				}
				b.Vars = append(b.Vars, cssVar{Name: name, Value: CSSValue(t, t.ValueForMode(m))})
			}
		}
	}

	out := cssData{Name: src.Name, Timestamp: src.timestamp(), Blocks: []cssBlock{root}}
	for _, b := range modes {
		out.Blocks = append(out.Blocks, *b)
	}
	return out
}

// VarName turns a full path into a custom property name.
func (e *CSSExporter) VarName(fullPath, sep string) string {
	name := strings.ToLower(strings.ReplaceAll(fullPath, sep, "-"))
	name = strings.ReplaceAll(name, " ", "-")
	return "--" + e.prefix + name
}

// CSSValue formats a value for a declaration. Spacing-like numbers get a
// px unit.
func CSSValue(t token.Token, v token.Value) string {
	switch v.Kind {
	case token.TypeColor:
		if v.Color.RGBA.A < 1 {
			return colour.RGBAToHex8(v.Color.RGBA)
		}
		return v.Color.Hex
	case token.TypeNumber:
		n := strconv.FormatFloat(v.Number, 'f', -1, 64)
		if dimensional(t) && v.Number != 0 {
			return n + "px"
		}
		return n
	case token.TypeBoolean:
		return strconv.FormatBool(v.Bool)
	}
	return v.Text
}

func dimensional(t token.Token) bool {
	switch t.Collection {
	case token.CollectionSpacing, token.CollectionGap, token.CollectionIconSize, token.CollectionRadius:
		return true
	}
	return len(t.Path) >= 2 && t.Path[0] == "font" && t.Path[1] == "size"
}
