package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteDefault writes the default configuration to path. An existing file
// is kept unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		}
	}
	data, err := encode(Default())
	if err != nil {
		return err
	}
	return write(path, data)
}

// SaveThemes replaces the themes section of the file at path, keeping every
// other section and its comments.
func SaveThemes(path string, themes []ThemeConfig) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	var themesNode yaml.Node
	if err := themesNode.Encode(themes); err != nil {
		return fmt.Errorf("building themes node: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level of %s is not a mapping", path)
	}
	found := false
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == "themes" {
			root.Content[i+1] = &themesNode
			found = true
			break
		}
	}
	if !found {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "themes"},
			&themesNode,
		)
	}

	out, err := encode(&doc)
	if err != nil {
		return err
	}
	return write(path, out)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()
	return buf.Bytes(), nil
}

func write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
