package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "vgi.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.ApplyDefaults()
	if cfg.Shortcut.Name != want.Shortcut.Name {
		t.Errorf("Shortcut.Name = %q, want %q", cfg.Shortcut.Name, want.Shortcut.Name)
	}
	if cfg.Steam.CompatDataID != "8500" {
		t.Errorf("Steam.CompatDataID = %q, want 8500", cfg.Steam.CompatDataID)
	}
	if cfg.Watch.TimeoutSec != 120 || cfg.Watch.IntervalSec != 2 {
		t.Errorf("watch timing = %d/%d, want 120/2", cfg.Watch.TimeoutSec, cfg.Watch.IntervalSec)
	}
	if cfg.AppID.Strategy != "crc" {
		t.Errorf("AppID.Strategy = %q, want crc", cfg.AppID.Strategy)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vgi.yaml")
	contents := `version: 1
shortcut:
  name: Vanguard Test
watch:
  timeout_s: 30
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shortcut.Name != "Vanguard Test" {
		t.Errorf("Shortcut.Name = %q, want override", cfg.Shortcut.Name)
	}
	if cfg.Watch.TimeoutSec != 30 {
		t.Errorf("Watch.TimeoutSec = %d, want 30", cfg.Watch.TimeoutSec)
	}
	if cfg.Watch.IntervalSec != 2 {
		t.Errorf("Watch.IntervalSec = %d, want default 2", cfg.Watch.IntervalSec)
	}
	if cfg.Shortcut.ProtonTool != "proton_experimental" {
		t.Errorf("Shortcut.ProtonTool = %q, want default", cfg.Shortcut.ProtonTool)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vgi.yaml")
	if err := os.WriteFile(path, []byte("shortcut: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Steam.ExtraRoots = []string{"/opt/steam"}
	cfg.Shortcut.Icon = "/tmp/icon.png"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "vgi.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Steam.ExtraRoots) != 1 || got.Steam.ExtraRoots[0] != "/opt/steam" {
		t.Errorf("ExtraRoots = %v", got.Steam.ExtraRoots)
	}
	if got.Shortcut.Icon != "/tmp/icon.png" {
		t.Errorf("Icon = %q", got.Shortcut.Icon)
	}
}
