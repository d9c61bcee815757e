package inject

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vgi/internal/appid"
	"vgi/internal/compat"
	"vgi/internal/procwatch"
	"vgi/internal/runcache"
	"vgi/internal/shortcuts"
	"vgi/internal/steam"
)

type fakeSource struct {
	procs []procwatch.Proc
}

func (f *fakeSource) Snapshot(context.Context) ([]procwatch.Proc, error) {
	return f.procs, nil
}

type fakePrompter struct {
	selectIdx int
	input     string
	selects   int
	inputs    int
}

func (f *fakePrompter) Select(string, []string) (int, error) {
	f.selects++
	return f.selectIdx, nil
}

func (f *fakePrompter) Input(string) (string, error) {
	f.inputs++
	return f.input, nil
}

// buildSteamTree lays out a minimal installation: one profile, one library,
// a Proton prefix holding the protected-game wrapper.
func buildSteamTree(t *testing.T, profileID string) (root, exeRel string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir()) // keep a host install out of the default roots
	root = t.TempDir()
	for _, dir := range []string{
		filepath.Join(root, "userdata", profileID, "config"),
		filepath.Join(root, "config"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	exeRel = "drive_c/EVE/" + steam.EACExeName
	exe := filepath.Join(root, "steamapps", "compatdata", "8500", "pfx", filepath.FromSlash(exeRel))
	if err := os.MkdirAll(filepath.Dir(exe), 0o755); err != nil {
		t.Fatalf("mkdir exe dir: %v", err)
	}
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatalf("write exe: %v", err)
	}
	return root, exeRel
}

func testOptions(root string) Options {
	return Options{
		SteamRoot:    root,
		Name:         "EVE Vanguard",
		ProtonTool:   "proton_experimental",
		Priority:     250,
		CompatDataID: "8500",
		Marker:       steam.ShippingExeName,
		Timeout:      time.Second,
		Interval:     time.Millisecond,
		Strategy:     appid.StrategyCRC,
	}
}

func TestRunEndToEnd(t *testing.T) {
	root, exeRel := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.CachePath = filepath.Join(t.TempDir(), "config.json")

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{procs: []procwatch.Proc{
		{PID: 9, Name: "game", Cmdline: []string{steam.ShippingExeName, "-eac", "-token=abc"}},
	}}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Created {
		t.Error("report.Created = false for a fresh store")
	}
	if !report.Captured || report.LaunchOptions != "-eac -token=abc" {
		t.Errorf("capture = %v %q, want -eac -token=abc", report.Captured, report.LaunchOptions)
	}
	if report.AppID >= 0 {
		t.Errorf("crc appid %d does not have the high bit set", report.AppID)
	}

	store, err := shortcuts.OpenStore(report.ShortcutsVDF)
	if err != nil {
		t.Fatalf("reopen shortcuts: %v", err)
	}
	slot, entry, ok := shortcuts.FindByName(store.Container(), opts.Name)
	if !ok {
		t.Fatal("entry missing from saved store")
	}
	if slot != report.Slot || entry.LaunchOptions != "-eac -token=abc" {
		t.Errorf("saved entry slot=%s opts=%q", slot, entry.LaunchOptions)
	}

	cfgStore, err := compat.OpenStore(report.ConfigVDF)
	if err != nil {
		t.Fatalf("reopen config: %v", err)
	}
	mapping, ok := cfgStore.Get(report.CompatKey)
	if !ok {
		t.Fatal("compat mapping missing from saved store")
	}
	if mapping.Name != "proton_experimental" || mapping.Priority != 250 {
		t.Errorf("mapping = %+v", mapping)
	}

	cache, _ := runcache.Load(opts.CachePath)
	if !cache.Complete() || cache.AppID != report.AppID {
		t.Errorf("cache not persisted: %+v", cache)
	}
	if cache.ExeRel != exeRel {
		t.Errorf("cache exe = %q, want %q", cache.ExeRel, exeRel)
	}
}

func TestRunIdempotent(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.SkipCapture = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Created {
		t.Error("second run created a duplicate entry")
	}
	if second.Slot != first.Slot || second.AppID != first.AppID {
		t.Errorf("second run slot/appid = %s/%d, want %s/%d",
			second.Slot, second.AppID, first.Slot, first.AppID)
	}

	store, _ := shortcuts.OpenStore(first.ShortcutsVDF)
	if n := store.Container().Len(); n != 1 {
		t.Errorf("container holds %d entries, want 1", n)
	}
}

func TestRunMovedPrefixAppendsFreshEntry(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.SkipCapture = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Reinstalling under a different library leaves the old record behind
	// with an exe that no longer exists. The name still matches but the
	// entry must not be reused.
	moved := filepath.Join(t.TempDir(), "pfx")
	exe := filepath.Join(moved, "drive_c", "EVE", steam.EACExeName)
	if err := os.MkdirAll(filepath.Dir(exe), 0o755); err != nil {
		t.Fatalf("mkdir moved prefix: %v", err)
	}
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatalf("write moved exe: %v", err)
	}
	svc.Opts.Prefix = moved

	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !second.Created {
		t.Error("second.Created = false, want a fresh entry for the moved exe")
	}
	if second.Slot == first.Slot {
		t.Errorf("second run reused slot %s of the stale entry", first.Slot)
	}

	store, _ := shortcuts.OpenStore(second.ShortcutsVDF)
	if n := store.Container().Len(); n != 2 {
		t.Fatalf("container holds %d entries, want stale plus fresh", n)
	}
	node, _ := store.Container().Get(second.Slot)
	entry, _ := shortcuts.EntryFromNode(node)
	if entry.Exe != `"`+exe+`"` {
		t.Errorf("fresh entry exe = %s, want %q", entry.Exe, exe)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.DryRun = true
	opts.CachePath = filepath.Join(t.TempDir(), "config.json")

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.DryRun || report.Captured {
		t.Errorf("report = %+v", report)
	}
	if _, err := os.Stat(report.ShortcutsVDF); !errors.Is(err, os.ErrNotExist) {
		t.Error("dry run wrote the shortcuts store")
	}
	if _, err := os.Stat(opts.CachePath); !errors.Is(err, os.ErrNotExist) {
		t.Error("dry run wrote the cache")
	}
}

func TestRunBlockedWhileSteamRuns(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.SkipCapture = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{procs: []procwatch.Proc{{PID: 1, Name: "steam"}}}

	_, err := svc.Run(context.Background())
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
}

func TestRunForceSkipsSteamCheck(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.SkipCapture = true
	opts.Force = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{procs: []procwatch.Proc{{PID: 1, Name: "steam"}}}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run with force: %v", err)
	}
	if _, err := os.Stat(report.ShortcutsVDF); err != nil {
		t.Error("force did not write the store")
	}
}

func TestRunCaptureTimeoutStillInjects(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.Timeout = time.Millisecond

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Captured || report.LaunchOptions != "" {
		t.Errorf("report = %+v, want no capture", report)
	}
	if _, err := os.Stat(report.ShortcutsVDF); err != nil {
		t.Error("store not written after capture timeout")
	}
}

func TestResolveNoSteamRoot(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	opts := testOptions(filepath.Join(t.TempDir(), "missing"))
	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	_, err := svc.Run(context.Background())
	var de *DiscoveryError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DiscoveryError", err)
	}
}

func TestResolveMultipleProfilesNeedsPrompt(t *testing.T) {
	root, _ := buildSteamTree(t, "111")
	if err := os.MkdirAll(filepath.Join(root, "userdata", "222", "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	opts := testOptions(root)
	opts.SkipCapture = true
	opts.NoPrompt = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	_, err := svc.Run(context.Background())
	if !errors.Is(err, ErrPromptRequired) {
		t.Fatalf("err = %v, want ErrPromptRequired", err)
	}

	svc.Opts.NoPrompt = false
	prompter := &fakePrompter{selectIdx: 1}
	svc.Prompter = prompter
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run with prompter: %v", err)
	}
	if prompter.selects != 1 {
		t.Errorf("prompter.selects = %d, want 1", prompter.selects)
	}
	if report.ProfileID != "222" {
		t.Errorf("ProfileID = %q, want selected 222", report.ProfileID)
	}
}

func TestResolveExplicitProfile(t *testing.T) {
	root, _ := buildSteamTree(t, "111")
	if err := os.MkdirAll(filepath.Join(root, "userdata", "222", "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	opts := testOptions(root)
	opts.SkipCapture = true
	opts.ProfileID = "222"
	opts.NoPrompt = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ProfileID != "222" {
		t.Errorf("ProfileID = %q, want 222", report.ProfileID)
	}
}

func TestResolveMissingExe(t *testing.T) {
	root, _ := buildSteamTree(t, "111")
	exe := filepath.Join(root, "steamapps", "compatdata", "8500", "pfx", "drive_c", "EVE", steam.EACExeName)
	if err := os.Remove(exe); err != nil {
		t.Fatalf("remove exe: %v", err)
	}
	opts := testOptions(root)
	opts.SkipCapture = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	_, err := svc.Run(context.Background())
	var ee *ExeError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want ExeError", err)
	}
}

func TestResolvePrefersValidCache(t *testing.T) {
	root, exeRel := buildSteamTree(t, "12345678")
	cachePath := filepath.Join(t.TempDir(), "config.json")
	prefix := filepath.Join(root, "steamapps", "compatdata", "8500", "pfx")
	cache := &runcache.Cache{
		SteamRoot:    root,
		ProfileID:    "12345678",
		ShortcutsVDF: filepath.Join(root, "userdata", "12345678", "config", "shortcuts.vdf"),
		ConfigVDF:    filepath.Join(root, "config", "config.vdf"),
		Prefix:       prefix,
		ExeRel:       exeRel,
	}
	if err := cache.Save(cachePath); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	// An unusable hint proves the cached paths were taken instead.
	opts := testOptions(filepath.Join(t.TempDir(), "nope"))
	opts.SkipCapture = true
	opts.CachePath = cachePath

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SteamRoot != root || report.Prefix != prefix {
		t.Errorf("report paths = %s / %s, want cached", report.SteamRoot, report.Prefix)
	}
}

func TestStatusReportsInjectedEntry(t *testing.T) {
	root, _ := buildSteamTree(t, "12345678")
	opts := testOptions(root)
	opts.SkipCapture = true

	svc := NewService(opts, nil)
	svc.Source = &fakeSource{}

	status, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status before inject: %v", err)
	}
	if status.EntryPresent || status.MappingPresent {
		t.Errorf("fresh tree reports injection: %+v", status)
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	status, err = svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status after inject: %v", err)
	}
	if !status.EntryPresent || status.AppID != report.AppID {
		t.Errorf("status = %+v, want entry with appid %d", status, report.AppID)
	}
	if !status.MappingPresent || status.ProtonTool != "proton_experimental" || status.Priority != 250 {
		t.Errorf("status mapping = %+v", status)
	}
}
