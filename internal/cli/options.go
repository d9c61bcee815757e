package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"vgi/internal/appid"
	"vgi/internal/config"
	"vgi/internal/inject"
	"vgi/internal/logx"
	"vgi/internal/runcache"
)

// injectFlags holds the per-command flag values layered over the settings
// file. Zero values mean "not set, use the config".
type injectFlags struct {
	steamRoot   string
	profileID   string
	prefix      string
	exeRel      string
	name        string
	icon        string
	protonTool  string
	priority    int
	compatID    string
	marker      string
	timeoutSec  int
	intervalSec int
	strategy    string
	dryRun      bool
	skipCapture bool
	refresh     bool
	force       bool
}

func (f *injectFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.steamRoot, "steam-root", "", "Steam installation root (skips discovery)")
	flags.StringVar(&f.profileID, "profile", "", "Steam userdata profile id")
	flags.StringVar(&f.prefix, "prefix", "", "Proton prefix holding the game")
	flags.StringVar(&f.exeRel, "exe", "", "Executable path relative to the prefix")
	flags.StringVar(&f.name, "name", "", "Shortcut display name")
	flags.StringVar(&f.icon, "icon", "", "Shortcut icon path")
	flags.StringVar(&f.protonTool, "proton", "", "Proton tool name for the compat mapping")
	flags.IntVar(&f.priority, "priority", 0, "Compat mapping priority")
	flags.StringVar(&f.compatID, "compatdata-id", "", "compatdata folder to search for the prefix")
	flags.StringVar(&f.marker, "marker", "", "Process name that marks a game launch")
	flags.IntVar(&f.timeoutSec, "timeout", 0, "Seconds to wait for a launch")
	flags.IntVar(&f.intervalSec, "interval", 0, "Seconds between process scans")
	flags.StringVar(&f.strategy, "appid-strategy", "", "Shortcut id derivation (crc or legacy)")
}

// resolveOptions merges the settings file and flags into pipeline options.
func resolveOptions(f injectFlags) (inject.Options, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return inject.Options{}, fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return inject.Options{}, err
	}
	if results := cfg.Validate(); config.HasErrors(results) {
		for _, r := range results {
			if r.Level == "error" {
				return inject.Options{}, fmt.Errorf("config: %s", r.Message)
			}
		}
	}

	cache := cachePath
	if cache == "" {
		if cache, err = runcache.DefaultPath(); err != nil {
			return inject.Options{}, fmt.Errorf("resolve cache path: %w", err)
		}
	}

	opts := inject.Options{
		SteamRoot:    f.steamRoot,
		ExtraRoots:   cfg.Steam.ExtraRoots,
		ProfileID:    f.profileID,
		Prefix:       f.prefix,
		ExeRel:       f.exeRel,
		Name:         firstNonEmpty(f.name, cfg.Shortcut.Name),
		Icon:         firstNonEmpty(f.icon, cfg.Shortcut.Icon),
		ProtonTool:   firstNonEmpty(f.protonTool, cfg.Shortcut.ProtonTool),
		Priority:     cfg.Shortcut.Priority,
		CompatDataID: firstNonEmpty(f.compatID, cfg.Steam.CompatDataID),
		Marker:       firstNonEmpty(f.marker, cfg.Watch.Marker),
		Timeout:      time.Duration(cfg.Watch.TimeoutSec) * time.Second,
		Interval:     time.Duration(cfg.Watch.IntervalSec) * time.Second,
		CachePath:    cache,
		RefreshCache: f.refresh,
		DryRun:       f.dryRun,
		NoPrompt:     noPrompt,
		SkipCapture:  f.skipCapture,
		Force:        f.force,
	}
	if f.priority != 0 {
		opts.Priority = f.priority
	}
	if f.timeoutSec != 0 {
		opts.Timeout = time.Duration(f.timeoutSec) * time.Second
	}
	if f.intervalSec != 0 {
		opts.Interval = time.Duration(f.intervalSec) * time.Second
	}

	strategy, err := appid.ParseStrategy(firstNonEmpty(f.strategy, cfg.AppID.Strategy))
	if err != nil {
		return inject.Options{}, err
	}
	opts.Strategy = strategy
	return opts, nil
}

// newRunLogger returns a file logger when --verbose is set, else a no-op.
// The closer is never nil.
func newRunLogger() (*log.Logger, io.Closer, error) {
	if !verbose {
		return nil, io.NopCloser(nil), nil
	}
	dir, err := logx.DefaultDir()
	if err != nil {
		return nil, nil, err
	}
	return logx.New(dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
