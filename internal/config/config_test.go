package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/geom"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.5, cfg.Viewport.MinZoom)
	assert.Equal(t, 2.0, cfg.Viewport.MaxZoom)
	assert.False(t, cfg.Grid.Snap)
	assert.Equal(t, 15.0, cfg.Grid.Size)
	assert.True(t, cfg.Editor.Deletable)
	assert.Equal(t, "curve", cfg.Editor.DefaultEdgeType)
	assert.Equal(t, 100, cfg.Editor.HistoryDepth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/flowedit", ConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "flowedit"), ConfigDir())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Grid.Snap = true
	cfg.Grid.Size = 20
	cfg.Editor.DefaultEdgeType = "orthogonal"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.True(t, loaded.Grid.Snap)
	assert.Equal(t, 20.0, loaded.Grid.Size)
	assert.Equal(t, "orthogonal", loaded.Editor.DefaultEdgeType)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "flowedit", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[grid]\nsnap = true\n\n[log]\nlevel = \"debug\"\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Grid.Snap)
	assert.Equal(t, 15.0, cfg.Grid.Size)
	assert.True(t, cfg.Editor.Deletable)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadRejectsBadToml(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "flowedit", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[grid\nsnap = "), 0o644))

	cfg, err := Load()
	assert.ErrorContains(t, err, "config: parse")
	assert.Equal(t, Default(), cfg)
}

func TestEnsureExists(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, EnsureExists())
	_, err := os.Stat(filepath.Join(dir, "flowedit", "config.toml"))
	require.NoError(t, err)
	require.NoError(t, EnsureExists())
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Grid.Snap = true
	cfg.Editor.Locked = true
	cfg.Editor.DefaultEdgeType = "Straight"

	opts := cfg.Options()
	assert.True(t, opts.SnapToGrid)
	assert.True(t, opts.Locked)
	assert.Equal(t, geom.Straight, opts.DefaultEdgeType)
	assert.Equal(t, 0.5, opts.MinZoom)
	assert.Nil(t, opts.Logger)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Log.Level = tt.level
		assert.Equal(t, tt.want, cfg.LogLevel(), "level %q", tt.level)
	}
}

func TestGetSavePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "diagram.json", cfg.GetSavePath("diagram.json"))

	dir := filepath.Join(t.TempDir(), "saves")
	cfg.Editor.SaveDirectory = dir
	assert.Equal(t, filepath.Join(dir, "diagram.json"), cfg.GetSavePath("diagram.json"))
	_, err := os.Stat(dir)
	assert.NoError(t, err, "save directory is created")

	assert.Equal(t, "/abs/x.json", cfg.GetSavePath("/abs/x.json"))
}
