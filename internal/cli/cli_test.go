package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tokenkit/internal/cli"
	"github.com/jmylchreest/tokenkit/internal/config"
	"github.com/jmylchreest/tokenkit/pkg/plugin/memhost"
)

// setup writes a default config into a temp dir and returns both paths.
func setup(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "tokenkit.yaml")
	require.NoError(t, config.WriteDefault(cfgPath, false))
	return dir, cfgPath
}

// run executes a fresh command tree and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.0.0", info["protocol_version"])
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	_, err := run(t, "init", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = run(t, "init", path)
	assert.Error(t, err, "init refuses to overwrite without --force")
}

func TestGenerateCommand(t *testing.T) {
	_, cfg := setup(t)

	t.Run("summary", func(t *testing.T) {
		out, err := run(t, "generate", "--config", cfg)
		require.NoError(t, err)
		for _, want := range []string{"Collection", "Primitives", "Tokens", "Components", "Spacing", "✓ Generated"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := run(t, "generate", "--config", cfg, "--list", "--collection", "Radius")
		require.NoError(t, err)
		assert.Contains(t, out, "radius/full")
		assert.NotContains(t, out, "spacing/")
	})

	t.Run("separator flag", func(t *testing.T) {
		out, err := run(t, "generate", "--config", cfg, "--separator", ".", "--list", "--collection", "Radius")
		require.NoError(t, err)
		assert.Contains(t, out, "radius.full")
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := run(t, "generate", "--config", cfg, "--collection", "Nope")
		assert.ErrorContains(t, err, "unknown collection")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := run(t, "generate", "--config", cfg, "--separator", ":")
		assert.ErrorContains(t, err, "invalid config")
	})
}

func TestExportCommand(t *testing.T) {
	dir, cfg := setup(t)
	outDir := filepath.Join(dir, "build")

	out, err := run(t, "export", "--config", cfg, "--format", "json,css", "--out", outDir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would write: "+filepath.Join(outDir, "tokens.css"))
	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")

	_, err = run(t, "export", "--config", cfg, "--format", "json,css,yaml", "--out", outDir, "--css.prefix", "tk-")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "tokens.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "tokenkit", doc["$name"])
	assert.Contains(t, doc, "components")

	css, err := os.ReadFile(filepath.Join(outDir, "tokens.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "--tk-spacing-md:")
	assert.Contains(t, string(css), `[data-theme="dark"]`)

	_, err = os.Stat(filepath.Join(outDir, "tokens.yaml"))
	require.NoError(t, err)

	_, err = run(t, "export", "--config", cfg, "--format", "scss")
	assert.ErrorContains(t, err, "unknown export format")

	_, err = run(t, "export", "--config", cfg, "--format", "json", "--out", outDir, "--json.filename", "../escape.json")
	assert.ErrorContains(t, err, "directory traversal")
}

func TestDiffCommandConverges(t *testing.T) {
	dir, cfg := setup(t)
	snapshot := filepath.Join(dir, "project.yaml")

	out, err := run(t, "diff", "--config", cfg, "--snapshot", snapshot, "--collection", "Spacing,Radius", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Spacing: 10 to add, 0 to update, 0 to delete, 0 unchanged")
	assert.Contains(t, out, "modes to add: desktop, tablet, mobile")
	assert.Contains(t, out, "✓ applied: 10 created")
	assert.Contains(t, out, "✓ Saved "+snapshot)

	snap, err := memhost.LoadFile(snapshot)
	require.NoError(t, err)
	assert.Len(t, snap.Collections, 2)

	out, err = run(t, "diff", "--config", cfg, "--snapshot", snapshot, "--collection", "Spacing", "--json")
	require.NoError(t, err)
	var reports []struct {
		Collection string         `json:"collection"`
		Summary    map[string]int `json:"summary"`
		Changes    []any          `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, map[string]int{"add": 0, "update": 0, "delete": 0, "unchanged": 10}, reports[0].Summary)
	assert.Empty(t, reports[0].Changes)
}

func TestDiffCommandDetectsChanges(t *testing.T) {
	dir, cfg := setup(t)
	snapshot := filepath.Join(dir, "project.yaml")

	_, err := run(t, "diff", "--config", cfg, "--snapshot", snapshot, "--collection", "Spacing", "--write")
	require.NoError(t, err)

	// A different progression changes most of the ladder.
	content, err := os.ReadFile(cfg)
	require.NoError(t, err)
	content = []byte(strings.Replace(string(content), "progression: linear", "progression: fibonacci", 1))
	require.NoError(t, os.WriteFile(cfg, content, 0o600))

	out, err := run(t, "diff", "--config", cfg, "--snapshot", snapshot, "--collection", "Spacing")
	require.NoError(t, err)
	assert.Contains(t, out, "to update")
	assert.NotContains(t, out, "0 to update")
	assert.Contains(t, out, "~  spacing/")
}

func TestImportCommand(t *testing.T) {
	dir, cfg := setup(t)
	snapshot := filepath.Join(dir, "project.yaml")
	_, err := run(t, "diff", "--config", cfg, "--snapshot", snapshot, "--collection", "Radius", "--write")
	require.NoError(t, err)

	out, err := run(t, "import", "--config", cfg, "--snapshot", snapshot, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "radius/full")
	assert.Contains(t, out, "✓ Imported")
}

func TestSyncRequiresHost(t *testing.T) {
	_, cfg := setup(t)
	_, err := run(t, "sync", "--config", cfg)
	assert.ErrorContains(t, err, "no host configured")

	_, err = run(t, "sync", "--config", cfg, "--host", filepath.Join(t.TempDir(), "missing-host"))
	assert.ErrorContains(t, err, "host binary not usable")

	_, err = run(t, "sync", "--config", cfg, "--typography")
	assert.ErrorContains(t, err, "--typography requires --apply")
}

func TestThemesCommands(t *testing.T) {
	_, cfg := setup(t)

	_, err := run(t, "themes", "add", "--config", cfg, "--name", "Ocean", "--brand", "#0EA5E9", "--modes", "dark")
	require.NoError(t, err)

	out, err := run(t, "themes", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Default (system)")
	assert.Contains(t, out, "ocean")
	assert.Contains(t, out, "[ocean-dark]")

	_, err = run(t, "themes", "add", "--config", cfg, "--name", "ocean", "--brand", "#000000")
	assert.Error(t, err, "duplicate theme")

	out, err = run(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "light, dark, ocean-dark")

	_, err = run(t, "themes", "remove", "--config", cfg, "default")
	assert.Error(t, err)
	_, err = run(t, "themes", "remove", "--config", cfg, "Ocean")
	require.NoError(t, err)
	_, err = run(t, "themes", "remove", "--config", cfg, "Ocean")
	assert.Error(t, err)
}
