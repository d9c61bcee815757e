// Package inject orchestrates a full shortcut injection: locate the Steam
// stores, insert or refresh the shortcut entry, capture launch options from a
// live run, map the Proton tool, and persist everything with backups.
package inject

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"vgi/internal/appid"
	"vgi/internal/compat"
	"vgi/internal/procwatch"
	"vgi/internal/runcache"
	"vgi/internal/shortcuts"
	"vgi/internal/steam"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Prompter supplies interactive answers during resolution. A nil Prompter
// behaves like prompting being disabled.
type Prompter interface {
	Select(label string, options []string) (int, error)
	Input(label string) (string, error)
}

// CaptureFunc wraps the blocking process watch, letting the caller render
// progress while work runs. The default invokes work directly.
type CaptureFunc func(marker string, timeout time.Duration, work func() (string, bool, error)) (string, bool, error)

// Options carries the fully merged settings for one run. The CLI resolves
// config-file values and flags into this before constructing the service.
type Options struct {
	SteamRoot  string
	ExtraRoots []string
	ProfileID  string
	Prefix     string
	ExeRel     string

	Name       string
	Icon       string
	ProtonTool string
	Priority   int

	CompatDataID string
	Marker       string
	Timeout      time.Duration
	Interval     time.Duration
	Strategy     appid.Strategy

	CachePath    string
	RefreshCache bool

	DryRun      bool
	NoPrompt    bool
	SkipCapture bool
	Force       bool
}

// Service wires the injection pipeline together.
type Service struct {
	Opts     Options
	Logger   Logger
	Source   procwatch.ProcessSource
	Prompter Prompter
	Capture  CaptureFunc
}

// Report summarizes what a run did (or, for a dry run, would do).
type Report struct {
	SteamRoot    string `json:"steam_root"`
	ProfileID    string `json:"profile_id"`
	ShortcutsVDF string `json:"shortcuts_vdf"`
	ConfigVDF    string `json:"config_vdf"`
	Prefix       string `json:"prefix"`
	ExeRel       string `json:"exe_rel"`

	Slot          string `json:"slot"`
	AppID         int32  `json:"appid"`
	LaunchID      uint64 `json:"launch_id"`
	CompatKey     uint64 `json:"compat_key"`
	LaunchOptions string `json:"launch_options"`

	Created  bool `json:"created"`
	Captured bool `json:"captured"`
	DryRun   bool `json:"dry_run"`
}

// resolved holds the located store paths for one run.
type resolved struct {
	SteamRoot    string
	ProfileID    string
	ShortcutsVDF string
	ConfigVDF    string
	Prefix       string
	ExeRel       string
}

// NewService builds a service with defaults filled in.
func NewService(opts Options, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		Opts:   opts,
		Logger: logger,
		Source: procwatch.SystemSource{},
		Capture: func(_ string, _ time.Duration, work func() (string, bool, error)) (string, bool, error) {
			return work()
		},
	}
}

func (s *Service) logf(format string, v ...any) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Printf(format, v...)
}

// Run executes the full pipeline. The returned report is valid whenever the
// error is nil; with DryRun set no file is touched.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	o := s.Opts

	res, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.logf("resolved stores: shortcuts=%s config=%s prefix=%s", res.ShortcutsVDF, res.ConfigVDF, res.Prefix)

	store, err := shortcuts.OpenStore(res.ShortcutsVDF)
	if err != nil {
		return nil, err
	}
	container := store.Container()

	exeAbs := filepath.Join(res.Prefix, filepath.FromSlash(res.ExeRel))
	report := &Report{
		SteamRoot:    res.SteamRoot,
		ProfileID:    res.ProfileID,
		ShortcutsVDF: res.ShortcutsVDF,
		ConfigVDF:    res.ConfigVDF,
		Prefix:       res.Prefix,
		ExeRel:       res.ExeRel,
		DryRun:       o.DryRun,
	}

	// Matching requires name and exe both. A name-only hit whose exe points
	// elsewhere is a stale record from a moved prefix; it stays untouched
	// and a fresh entry is appended.
	slot, existing, found := shortcuts.FindMatch(container, o.Name, quote(exeAbs))
	if found {
		report.Slot = slot
		report.AppID = existing.AppID
		report.LaunchOptions = existing.LaunchOptions
		s.logf("entry %q already present at slot %s (appid %d)", o.Name, slot, existing.AppID)
	} else {
		id := o.Strategy.EntryID(exeAbs, o.Name)
		entry := shortcuts.NewEntry(id, o.Name, quote(exeAbs), quote(filepath.Dir(exeAbs)), o.Icon, "")
		report.Slot = shortcuts.Insert(container, entry)
		report.AppID = id
		report.Created = true
		s.logf("inserted entry %q at slot %s (appid %d)", o.Name, report.Slot, id)
	}

	report.LaunchID = appid.LaunchID(uint32(report.AppID))
	report.CompatKey = o.Strategy.CompatKey(report.AppID)

	if !o.DryRun && !o.SkipCapture {
		options, captured, err := s.captureLaunch(ctx)
		if err != nil {
			return nil, err
		}
		if captured {
			if err := shortcuts.PatchLaunchOptions(container, report.Slot, options); err != nil {
				return nil, err
			}
			report.LaunchOptions = options
			report.Captured = true
			s.logf("captured launch options: %s", options)
		}
	}

	cfgStore, err := compat.OpenStore(res.ConfigVDF)
	if err != nil {
		return nil, err
	}
	cfgStore.Set(report.CompatKey, o.ProtonTool, o.Priority)

	if o.DryRun {
		s.logf("dry run: skipping writes")
		return report, nil
	}

	if !o.Force {
		if err := s.requireSteamStopped(ctx); err != nil {
			return nil, err
		}
	} else {
		s.logf("force: skipping the running-client check")
	}

	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("save shortcuts: %w", err)
	}
	if err := cfgStore.Save(); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	if o.CachePath != "" {
		cache := &runcache.Cache{
			SteamRoot:    res.SteamRoot,
			ProfileID:    res.ProfileID,
			ShortcutsVDF: res.ShortcutsVDF,
			ConfigVDF:    res.ConfigVDF,
			Prefix:       res.Prefix,
			ExeRel:       res.ExeRel,
			ShortcutName: o.Name,
			AppID:        report.AppID,
			ProtonTool:   o.ProtonTool,
			Priority:     o.Priority,
			CompatDataID: o.CompatDataID,
		}
		if err := cache.Save(o.CachePath); err != nil {
			s.logf("cache save failed: %v", err)
		}
	}
	return report, nil
}

// captureLaunch waits for the game process and extracts its trailing
// arguments. A timeout is not an error; injection proceeds without options.
func (s *Service) captureLaunch(ctx context.Context) (string, bool, error) {
	o := s.Opts
	watcher := procwatch.New(s.Source, o.Interval, o.Timeout)
	watcher.Logger = s.Logger
	return s.Capture(o.Marker, watcher.Timeout, func() (string, bool, error) {
		return watcher.Await(ctx, o.Marker)
	})
}

// requireSteamStopped refuses to rewrite stores under a live client, which
// keeps its own copy in memory and clobbers external edits on exit. The
// client is normally still up right after a capture, so this waits for it to
// exit before giving up.
func (s *Service) requireSteamStopped(ctx context.Context) error {
	interval := s.Opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	deadline := time.Now().Add(s.Opts.Timeout)
	logged := false
	for {
		running, err := steam.IsRunning(ctx, s.Source)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &PreconditionError{Reason: "Steam is running; close it before the stores can be rewritten"}
		}
		if !logged {
			s.logf("waiting for Steam to exit")
			logged = true
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// resolve locates every path the pipeline needs, preferring the run cache,
// then overrides, then filesystem discovery, then the prompter.
func (s *Service) resolve(ctx context.Context) (*resolved, error) {
	o := s.Opts

	if o.CachePath != "" && !o.RefreshCache {
		cache, _ := runcache.Load(o.CachePath)
		if cache.Complete() && steam.ValidatePrefixAndExe(cache.Prefix, cache.ExeRel, steam.EACExeName) {
			s.logf("using cached paths from %s", o.CachePath)
			return &resolved{
				SteamRoot:    cache.SteamRoot,
				ProfileID:    cache.ProfileID,
				ShortcutsVDF: cache.ShortcutsVDF,
				ConfigVDF:    cache.ConfigVDF,
				Prefix:       cache.Prefix,
				ExeRel:       cache.ExeRel,
			}, nil
		}
	}

	roots := steam.FindRoots(o.SteamRoot, o.ExtraRoots)
	if len(roots) == 0 {
		return nil, &DiscoveryError{What: "a Steam installation"}
	}
	root := roots[0]
	if len(roots) > 1 {
		idx, err := s.choose("Multiple Steam installations found", roots)
		if err != nil {
			return nil, err
		}
		root = roots[idx]
	}

	profiles, err := steam.Profiles(root)
	if err != nil || len(profiles) == 0 {
		return nil, &DiscoveryError{What: "a Steam user profile"}
	}
	profile, err := s.pickProfile(profiles)
	if err != nil {
		return nil, err
	}

	prefix := o.Prefix
	if prefix == "" {
		libs := steam.LibraryFolders(root)
		found, ok := steam.FindCompatPrefix(libs, o.CompatDataID)
		if !ok {
			found, err = s.ask("Path to the game's Proton prefix")
			if err != nil {
				return nil, err
			}
		}
		prefix = found
	}

	exeRel := o.ExeRel
	if exeRel == "" {
		found, ok := steam.FindExeUnderPrefix(prefix, steam.EACExeName)
		if !ok {
			return nil, &ExeError{Prefix: prefix, ExeRel: steam.EACExeName}
		}
		exeRel = found
	}
	if !steam.ValidatePrefixAndExe(prefix, exeRel, steam.EACExeName) {
		return nil, &ExeError{Prefix: prefix, ExeRel: exeRel}
	}

	return &resolved{
		SteamRoot:    root,
		ProfileID:    profile.ID,
		ShortcutsVDF: profile.ShortcutsVDF,
		ConfigVDF:    steam.ConfigVDF(root),
		Prefix:       prefix,
		ExeRel:       exeRel,
	}, nil
}

func (s *Service) pickProfile(profiles []steam.Profile) (steam.Profile, error) {
	if s.Opts.ProfileID != "" {
		for _, p := range profiles {
			if p.ID == s.Opts.ProfileID {
				return p, nil
			}
		}
		return steam.Profile{}, &DiscoveryError{What: fmt.Sprintf("profile %q", s.Opts.ProfileID)}
	}
	if len(profiles) == 1 {
		return profiles[0], nil
	}
	labels := make([]string, len(profiles))
	for i, p := range profiles {
		labels[i] = p.ID
	}
	idx, err := s.choose("Multiple Steam profiles found", labels)
	if err != nil {
		return steam.Profile{}, err
	}
	return profiles[idx], nil
}

func (s *Service) choose(label string, options []string) (int, error) {
	if s.Opts.NoPrompt || s.Prompter == nil {
		return 0, ErrPromptRequired
	}
	return s.Prompter.Select(label, options)
}

func (s *Service) ask(label string) (string, error) {
	if s.Opts.NoPrompt || s.Prompter == nil {
		return "", ErrPromptRequired
	}
	return s.Prompter.Input(label)
}

func quote(path string) string {
	return `"` + path + `"`
}
