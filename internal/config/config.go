package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
)

// Config holds flowedit configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Grid     GridConfig     `toml:"grid"`
	Editor   EditorConfig   `toml:"editor"`
	Log      LogConfig      `toml:"log"`
}

// ViewportConfig bounds the zoom level.
type ViewportConfig struct {
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`
}

// GridConfig controls snapping of node positions.
type GridConfig struct {
	Snap bool    `toml:"snap"`
	Size float64 `toml:"size"`
}

// EditorConfig controls editing behavior.
type EditorConfig struct {
	Deletable       bool    `toml:"deletable"`
	Locked          bool    `toml:"locked"`
	DefaultEdgeType string  `toml:"default_edge_type"` // "curve", "straight", "orthogonal"
	HistoryDepth    int     `toml:"history_depth"`
	Curvature       float64 `toml:"curvature"`
	SaveDirectory   string  `toml:"save_directory"`
}

// LogConfig controls the log level.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the default configuration.
func Default() *Config {
	d := diagram.DefaultOptions()
	return &Config{
		Viewport: ViewportConfig{MinZoom: d.MinZoom, MaxZoom: d.MaxZoom},
		Grid:     GridConfig{Snap: false, Size: d.GridSize},
		Editor: EditorConfig{
			Deletable:       true,
			DefaultEdgeType: string(d.DefaultEdgeType),
			HistoryDepth:    d.HistoryDepth,
			Curvature:       d.Curvature,
		},
		Log: LogConfig{Level: "info"},
	}
}

// ConfigDir returns the flowedit config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowedit")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults; a file
// that does not parse is an error.
func Load() (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(configPath())
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", configPath(), err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(configPath()); err == nil {
		return nil
	}
	return Save(Default())
}

// Options converts the config into store options. Values the store cannot
// use are left for diagram.New to replace with its defaults.
func (c *Config) Options() diagram.Options {
	opts := diagram.DefaultOptions()
	opts.MinZoom = c.Viewport.MinZoom
	opts.MaxZoom = c.Viewport.MaxZoom
	opts.SnapToGrid = c.Grid.Snap
	opts.GridSize = c.Grid.Size
	opts.Deletable = c.Editor.Deletable
	opts.Locked = c.Editor.Locked
	opts.DefaultEdgeType = geom.RenderType(strings.ToLower(c.Editor.DefaultEdgeType))
	opts.HistoryDepth = c.Editor.HistoryDepth
	opts.Curvature = c.Editor.Curvature
	return opts
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// GetSavePath resolves a file name against the save directory. Absolute
// names and an empty save directory leave filename as is.
func (c *Config) GetSavePath(filename string) string {
	dir := expandHome(c.Editor.SaveDirectory)
	if dir == "" || filepath.IsAbs(filename) {
		return filename
	}
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, filename)
}

// LogPath is where the editor writes its log while the terminal is in use.
func LogPath() string {
	return filepath.Join(ConfigDir(), "flowedit.log")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
