// Package config loads the YAML settings file that tunes injection:
// discovery hints, shortcut defaults, and watcher timing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vgi/internal/steam"
)

// Config captures the injector settings for one machine.
type Config struct {
	Version  int            `yaml:"version"`
	Steam    SteamConfig    `yaml:"steam"`
	Shortcut ShortcutConfig `yaml:"shortcut"`
	Watch    WatchConfig    `yaml:"watch"`
	AppID    AppIDConfig    `yaml:"appid"`
}

// SteamConfig holds discovery hints for non-standard installations.
type SteamConfig struct {
	ExtraRoots   []string `yaml:"extra_roots"`
	CompatDataID string   `yaml:"compatdata_id"`
}

// ShortcutConfig sets the defaults written into new shortcut entries.
type ShortcutConfig struct {
	Name       string `yaml:"name"`
	Icon       string `yaml:"icon"`
	ProtonTool string `yaml:"proton_tool"`
	Priority   int    `yaml:"priority"`
}

// WatchConfig tunes the launch-capture process watcher.
type WatchConfig struct {
	Marker      string `yaml:"marker"`
	TimeoutSec  int    `yaml:"timeout_s"`
	IntervalSec int    `yaml:"interval_s"`
}

// AppIDConfig selects how shortcut identifiers are derived.
type AppIDConfig struct {
	Strategy string `yaml:"strategy"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Steam: SteamConfig{
			CompatDataID: steam.DefaultCompatDataID,
		},
		Shortcut: ShortcutConfig{
			Name:       "EVE Vanguard",
			ProtonTool: "proton_experimental",
			Priority:   250,
		},
		Watch: WatchConfig{
			Marker:      steam.ShippingExeName,
			TimeoutSec:  120,
			IntervalSec: 2,
		},
		AppID: AppIDConfig{
			Strategy: "crc",
		},
	}
}

// DefaultPath returns the settings location under the user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "vgi", "vgi.yaml"), nil
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Steam.CompatDataID == "" {
		c.Steam.CompatDataID = defaults.Steam.CompatDataID
	}
	if c.Shortcut.Name == "" {
		c.Shortcut.Name = defaults.Shortcut.Name
	}
	if c.Shortcut.ProtonTool == "" {
		c.Shortcut.ProtonTool = defaults.Shortcut.ProtonTool
	}
	if c.Shortcut.Priority == 0 {
		c.Shortcut.Priority = defaults.Shortcut.Priority
	}
	if c.Watch.Marker == "" {
		c.Watch.Marker = defaults.Watch.Marker
	}
	if c.Watch.TimeoutSec == 0 {
		c.Watch.TimeoutSec = defaults.Watch.TimeoutSec
	}
	if c.Watch.IntervalSec == 0 {
		c.Watch.IntervalSec = defaults.Watch.IntervalSec
	}
	if c.AppID.Strategy == "" {
		c.AppID.Strategy = defaults.AppID.Strategy
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
