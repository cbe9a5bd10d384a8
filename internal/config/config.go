package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "quaver"

type Config struct {
	// DataDir overrides where the durable stores live. Empty means the
	// XDG data directory.
	DataDir string `koanf:"data_dir"`

	Player  PlayerConfig  `koanf:"player"`
	Session SessionConfig `koanf:"session"`
}

// PlayerConfig holds external-player settings.
type PlayerConfig struct {
	CookiesPath string `koanf:"cookies_path"` // passed to mpv for age-gated streams
	SeekStep    int    `koanf:"seek_step"`    // seconds per seek keypress (default: 5)
}

// SessionConfig tunes the playback watchers.
type SessionConfig struct {
	ConfirmIdleBudget int `koanf:"confirm_idle_budget"` // polls before a play attempt is abandoned (default: 10)
	EndIdleThreshold  int `koanf:"end_idle_threshold"`  // silent polls before a track counts as ended (default: 3)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		cfg.DataDir = expandPath(cfg.DataDir)
	}
	if cfg.Player.CookiesPath != "" {
		cfg.Player.CookiesPath = expandPath(cfg.Player.CookiesPath)
	}
	if cfg.Player.SeekStep <= 0 {
		cfg.Player.SeekStep = 5
	}
	if cfg.Session.ConfirmIdleBudget <= 0 {
		cfg.Session.ConfirmIdleBudget = 10
	}
	if cfg.Session.EndIdleThreshold <= 0 {
		cfg.Session.EndIdleThreshold = 3
	}

	return cfg, nil
}

// StorePath returns the directory for one named durable store, creating
// parents as needed.
func (c *Config) StorePath(name string) (string, error) {
	if c.DataDir != "" {
		path := filepath.Join(c.DataDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	dir, err := xdg.DataFile(filepath.Join(appName, name))
	if err != nil {
		return "", err
	}
	return dir, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/quaver/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
