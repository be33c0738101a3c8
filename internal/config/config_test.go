package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/margay/margay/internal/errs"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "margay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeFile(t, `
engine: goldmark
plugins: [table, role]
highlight: true
max_nesting_depth: 32
output: public
rebuild_every: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "goldmark", cfg.Engine)
	require.Equal(t, []string{"table", "role"}, cfg.Plugins)
	require.True(t, cfg.Highlight)
	require.Equal(t, 32, cfg.MaxNestingDepth)
	require.Equal(t, "public", cfg.Output)
	require.Equal(t, 30*time.Second, cfg.RebuildEvery.Std())
}

func TestLoad_MissingDefaultIsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
}

func TestLoad_MissingExplicitFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Equal(t, errs.CategoryConfig, errs.CategoryOf(err))
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := writeFile(t, "engine: [broken\n")
	_, err := Load(path)
	require.Error(t, err)
}
