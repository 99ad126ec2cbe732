package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("color: always\njobs: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "always", cfg.Color)
	require.NotNil(t, cfg.Jobs)
	require.Equal(t, 4, *cfg.Jobs)
}

func TestLoadMissingIsNotError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "", cfg.Color)
}

func TestValidateRejectsBadColor(t *testing.T) {
	cfg := &Config{Color: "rainbow"}
	require.Error(t, cfg.Validate())
}
