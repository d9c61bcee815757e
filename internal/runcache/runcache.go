// Package runcache persists the outcome of a successful injection so later
// runs can skip discovery and prompting.
package runcache

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Cache records everything a repeat run needs to reuse the prior answers.
type Cache struct {
	SteamRoot    string `json:"steam_root"`
	ProfileID    string `json:"profile_id"`
	ShortcutsVDF string `json:"shortcuts_vdf"`
	ConfigVDF    string `json:"config_vdf"`
	Prefix       string `json:"prefix"`
	ExeRel       string `json:"exe_rel"`
	ShortcutName string `json:"shortcut_name"`
	AppID        int32  `json:"appid"`
	ProtonTool   string `json:"proton_tool"`
	Priority     int    `json:"priority"`
	CompatDataID string `json:"compatdata_id"`
}

// DefaultPath returns the cache location under the user config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "vgi", "config.json"), nil
}

// Load reads the cache from the given path. A missing or corrupt file
// returns an empty cache without error.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Cache{}, nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return &Cache{}, nil
	}
	return &c, nil
}

// Complete reports whether the cache holds enough to skip discovery.
func (c *Cache) Complete() bool {
	return c.SteamRoot != "" && c.ShortcutsVDF != "" && c.Prefix != "" && c.ExeRel != ""
}

// Save writes the cache atomically to the given path.
func (c *Cache) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
