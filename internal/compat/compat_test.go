package compat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vgi/internal/vdf"
)

func TestSetMappingCreatesNestedPath(t *testing.T) {
	root := vdf.NewMap()
	SetMapping(root, 3733033116, "proton_experimental", 250)

	m, ok := GetMapping(root, 3733033116)
	if !ok {
		t.Fatal("mapping not found after set")
	}
	if m.Name != "proton_experimental" || m.Config != "" || m.Priority != 250 {
		t.Fatalf("mapping = %+v", m)
	}
}

func TestSetMappingOverwrites(t *testing.T) {
	root := vdf.NewMap()
	SetMapping(root, 42, "proton_experimental", 250)
	SetMapping(root, 42, "proton_9", 100)

	m, _ := GetMapping(root, 42)
	if m.Name != "proton_9" || m.Priority != 100 {
		t.Fatalf("mapping = %+v, want overwritten record", m)
	}
}

func TestSetMappingPreservesSiblings(t *testing.T) {
	// Existing config content outside the mapping path must survive.
	input := `"InstallConfigStore"
{
	"Software"
	{
		"Valve"
		{
			"Steam"
			{
				"AutoUpdateWindowEnabled"		"0"
				"CompatToolMapping"
				{
					"1000"
					{
						"name"		"proton_9"
						"config"		""
						"Priority"		"250"
					}
				}
			}
		}
	}
}
`
	root, err := vdf.DecodeText([]byte(input))
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}

	SetMapping(root, 2000, "proton_experimental", 250)

	if m, ok := GetMapping(root, 1000); !ok || m.Name != "proton_9" {
		t.Fatalf("existing mapping lost: %+v %v", m, ok)
	}
	data, err := vdf.EncodeText(root, true)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if !strings.Contains(string(data), "AutoUpdateWindowEnabled") {
		t.Fatal("sibling key lost on rewrite")
	}
}

func TestGetMappingMissing(t *testing.T) {
	if _, ok := GetMapping(vdf.NewMap(), 7); ok {
		t.Fatal("expected no mapping in empty tree")
	}
}

func TestStoreMissingFileAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.vdf")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	store.Set(3733033116, "proton_experimental", 250)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// First save of a fresh file: no backup.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak.") {
			t.Fatalf("unexpected backup %s", e.Name())
		}
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	m, ok := reopened.Get(3733033116)
	if !ok || m.Name != "proton_experimental" || m.Priority != 250 {
		t.Fatalf("mapping after reload = %+v, %v", m, ok)
	}
}
