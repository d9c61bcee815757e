package steam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"vgi/internal/procwatch"
)

// IsRunning reports whether a Steam client process is currently alive.
// Shortcut stores must not be rewritten under a live client, which keeps its
// own in-memory copy and overwrites ours on exit.
func IsRunning(ctx context.Context, src procwatch.ProcessSource) (bool, error) {
	procs, err := src.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("scan processes: %w", err)
	}
	for _, p := range procs {
		if isSteamProc(p) {
			return true, nil
		}
	}
	return false, nil
}

func isSteamProc(p procwatch.Proc) bool {
	name := strings.ToLower(p.Name)
	if name == "steam" || name == "steam.sh" {
		return true
	}
	base := strings.ToLower(filepath.Base(p.Exe))
	return base == "steam" || base == "steam.sh"
}
