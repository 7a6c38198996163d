package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQueryOnly(t *testing.T) {
	cfg, err := Parse([]string{"select name"})
	require.NoError(t, err)
	require.Equal(t, "select name", cfg.Query)
	require.Equal(t, ".", cfg.Directory)
	require.False(t, cfg.Verbose)
	require.False(t, cfg.NoColor)
	require.False(t, cfg.Cache)
}

func TestParseQueryAndDirectory(t *testing.T) {
	cfg, err := Parse([]string{"select name", "/tmp"})
	require.NoError(t, err)
	require.Equal(t, "select name", cfg.Query)
	require.Equal(t, "/tmp", cfg.Directory)
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse([]string{"-v", "--no-color", "--cache", "select name"})
	require.NoError(t, err)
	require.True(t, cfg.Verbose)
	require.True(t, cfg.NoColor)
	require.True(t, cfg.Cache)
}

func TestParseMissingQueryFails(t *testing.T) {
	_, err := Parse([]string{})
	require.Error(t, err)
}

func TestParseConfigFileLoadsPalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palette.yml")
	require.NoError(t, os.WriteFile(path, []byte("dir: \"34\"\nexe: \"32\"\n"), 0o644))

	cfg, err := Parse([]string{"--config", path, "select name"})
	require.NoError(t, err)
	require.Equal(t, "34", cfg.Palette["dir"])
	require.Equal(t, "32", cfg.Palette["exe"])
}

func TestParseMissingConfigFileFails(t *testing.T) {
	_, err := Parse([]string{"--config", "/no/such/file.yml", "select name"})
	require.Error(t, err)
}
