package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"vgi/internal/compat"
	"vgi/internal/config"
	"vgi/internal/procwatch"
	"vgi/internal/shortcuts"
	"vgi/internal/steam"
	"vgi/internal/tui"
)

func newDoctorCmd() *cobra.Command {
	var f injectFlags
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that injection can succeed on this machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, f injectFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var sw *tui.StatusWriter
	if !outputJSON && tui.IsTerminal(cmd.OutOrStdout()) {
		sw = tui.NewStatusWriter(cmd.ErrOrStderr())
		defer sw.Stop()
	}
	phase := func(msg string) {
		if sw != nil {
			sw.Update(msg)
		}
	}

	var checks []healthCheck

	phase("loading settings")
	path := configPath
	if path == "" {
		path, _ = config.DefaultPath()
	}
	cfg, cfgErr := config.Load(path)
	checks = append(checks, checkConfig(cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, sw, checks)
	}

	phase("locating Steam")
	roots := steam.FindRoots(f.steamRoot, cfg.Steam.ExtraRoots)
	checks = append(checks, checkRoots(roots))
	if len(roots) == 0 {
		return writeDoctorResult(cmd, sw, checks)
	}
	root := roots[0]

	profiles, _ := steam.Profiles(root)
	checks = append(checks, checkProfiles(profiles))

	phase("searching for the game prefix")
	compatID := firstNonEmpty(f.compatID, cfg.Steam.CompatDataID)
	prefix, prefixOK := steam.FindCompatPrefix(steam.LibraryFolders(root), compatID)
	checks = append(checks, checkPrefix(prefix, prefixOK, compatID))

	if prefixOK {
		checks = append(checks, checkExe(prefix))
	}

	phase("decoding stores")
	checks = append(checks, checkStores(root, profiles))

	phase("scanning processes")
	checks = append(checks, checkSteamProcess(ctx))

	return writeDoctorResult(cmd, sw, checks)
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}
	results := cfg.Validate()
	var warnings, errors int
	for _, r := range results {
		switch r.Level {
		case "warning":
			warnings++
		case "error":
			errors++
		}
	}
	if errors > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%d errors", errors)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%d warnings", warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: "settings valid"}
}

func checkRoots(roots []string) healthCheck {
	if len(roots) == 0 {
		return healthCheck{Name: "Steam", Status: "error", Summary: "no installation with a userdata directory found"}
	}
	return healthCheck{Name: "Steam", Status: "ok", Summary: roots[0]}
}

func checkProfiles(profiles []steam.Profile) healthCheck {
	switch len(profiles) {
	case 0:
		return healthCheck{Name: "Profiles", Status: "error", Summary: "no userdata profiles"}
	case 1:
		return healthCheck{Name: "Profiles", Status: "ok", Summary: profiles[0].ID}
	}
	return healthCheck{Name: "Profiles", Status: "warning", Summary: fmt.Sprintf("%d profiles; injection will ask which to use", len(profiles))}
}

func checkPrefix(prefix string, ok bool, compatID string) healthCheck {
	if !ok {
		return healthCheck{Name: "Prefix", Status: "error", Summary: fmt.Sprintf("no compatdata/%s/pfx in any library", compatID)}
	}
	return healthCheck{Name: "Prefix", Status: "ok", Summary: prefix}
}

func checkExe(prefix string) healthCheck {
	rel, ok := steam.FindExeUnderPrefix(prefix, steam.EACExeName)
	if !ok {
		return healthCheck{Name: "Executable", Status: "error", Summary: steam.EACExeName + " not found under the prefix"}
	}
	return healthCheck{Name: "Executable", Status: "ok", Summary: rel}
}

func checkStores(root string, profiles []steam.Profile) healthCheck {
	for _, p := range profiles {
		if _, err := shortcuts.OpenStore(p.ShortcutsVDF); err != nil {
			return healthCheck{Name: "Stores", Status: "error", Summary: fmt.Sprintf("profile %s: %v", p.ID, err)}
		}
	}
	if _, err := compat.OpenStore(steam.ConfigVDF(root)); err != nil {
		return healthCheck{Name: "Stores", Status: "error", Summary: err.Error()}
	}
	return healthCheck{Name: "Stores", Status: "ok", Summary: "shortcut and compat stores decode"}
}

func checkSteamProcess(ctx context.Context) healthCheck {
	running, err := steam.IsRunning(ctx, procwatch.SystemSource{})
	if err != nil {
		return healthCheck{Name: "Process", Status: "warning", Summary: err.Error()}
	}
	if running {
		return healthCheck{Name: "Process", Status: "warning", Summary: "Steam is running; close it before injecting"}
	}
	return healthCheck{Name: "Process", Status: "ok", Summary: "Steam is not running"}
}

func writeDoctorResult(cmd *cobra.Command, sw *tui.StatusWriter, checks []healthCheck) error {
	if sw != nil {
		sw.Stop()
	}
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("INJECTION HEALTH:"))

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}
