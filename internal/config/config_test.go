package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, 5, cfg.Player.SeekStep)
	assert.Equal(t, 10, cfg.Session.ConfirmIdleBudget)
	assert.Equal(t, 3, cfg.Session.EndIdleThreshold)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `data_dir = "/tmp/quaver-test"

[player]
seek_step = 10

[session]
end_idle_threshold = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/quaver-test", cfg.DataDir)
	assert.Equal(t, 10, cfg.Player.SeekStep)
	assert.Equal(t, 5, cfg.Session.EndIdleThreshold)
	assert.Equal(t, 10, cfg.Session.ConfirmIdleBudget)
}

func TestStorePathWithDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DataDir: dir}

	path, err := cfg.StorePath("history")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history"), path)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "music"), expandPath("~/music"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "", expandPath(""))
}
