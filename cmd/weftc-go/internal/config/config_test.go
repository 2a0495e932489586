package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weftc.yaml"), []byte(content), 0o644))
}

func TestLoadOptional(t *testing.T) {
	t.Run("missing file yields the zero config", func(t *testing.T) {
		cfg, err := LoadOptional(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("reads every field", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, `
output: dist
helpers: import
import: weft/shared.js
level: debug
`)
		cfg, err := LoadOptional(dir)
		require.NoError(t, err)
		assert.Equal(t, "dist", cfg.Output)
		assert.Equal(t, "import", cfg.Helpers)
		assert.Equal(t, "weft/shared.js", cfg.Import)
		assert.Equal(t, "debug", cfg.Level)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "output: [unclosed")
		_, err := LoadOptional(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse weftc.yaml")
	})

	t.Run("rejects an unknown helpers mode", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "helpers: embedded")
		_, err := LoadOptional(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "helpers must be inline or import")
	})

	t.Run("rejects import mode without an import path", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "helpers: import")
		_, err := LoadOptional(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "import is required")
	})
}
