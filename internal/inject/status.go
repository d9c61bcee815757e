package inject

import (
	"context"

	"vgi/internal/appid"
	"vgi/internal/compat"
	"vgi/internal/shortcuts"
	"vgi/internal/steam"
)

// StatusReport describes the current injection state without modifying it.
type StatusReport struct {
	SteamRunning bool   `json:"steam_running"`
	SteamRoot    string `json:"steam_root"`
	ProfileID    string `json:"profile_id"`
	ShortcutsVDF string `json:"shortcuts_vdf"`
	ConfigVDF    string `json:"config_vdf"`
	Prefix       string `json:"prefix"`
	ExeRel       string `json:"exe_rel"`

	EntryPresent  bool   `json:"entry_present"`
	Slot          string `json:"slot,omitempty"`
	AppID         int32  `json:"appid,omitempty"`
	LaunchID      uint64 `json:"launch_id,omitempty"`
	LaunchOptions string `json:"launch_options,omitempty"`

	MappingPresent bool   `json:"mapping_present"`
	ProtonTool     string `json:"proton_tool,omitempty"`
	Priority       int    `json:"priority,omitempty"`
}

// Status resolves the stores and reports what is already injected. It never
// writes; resolution failures surface the same typed errors as Run.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	res, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		SteamRoot:    res.SteamRoot,
		ProfileID:    res.ProfileID,
		ShortcutsVDF: res.ShortcutsVDF,
		ConfigVDF:    res.ConfigVDF,
		Prefix:       res.Prefix,
		ExeRel:       res.ExeRel,
	}

	if running, err := steam.IsRunning(ctx, s.Source); err == nil {
		report.SteamRunning = running
	}

	store, err := shortcuts.OpenStore(res.ShortcutsVDF)
	if err != nil {
		return nil, err
	}
	if slot, entry, ok := shortcuts.FindByName(store.Container(), s.Opts.Name); ok {
		report.EntryPresent = true
		report.Slot = slot
		report.AppID = entry.AppID
		report.LaunchID = appid.LaunchID(uint32(entry.AppID))
		report.LaunchOptions = entry.LaunchOptions

		cfgStore, err := compat.OpenStore(res.ConfigVDF)
		if err != nil {
			return nil, err
		}
		key := s.Opts.Strategy.CompatKey(entry.AppID)
		if mapping, ok := cfgStore.Get(key); ok {
			report.MappingPresent = true
			report.ProtonTool = mapping.Name
			report.Priority = mapping.Priority
		}
	}
	return report, nil
}
