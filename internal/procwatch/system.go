package procwatch

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemSource reads the real OS process table. Per-process read failures
// (privilege, exit race) degrade to empty fields rather than errors.
type SystemSource struct{}

// Snapshot implements ProcessSource.
func (SystemSource) Snapshot(ctx context.Context) ([]Proc, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	out := make([]Proc, 0, len(procs))
	for _, p := range procs {
		row := Proc{PID: p.Pid}
		if name, err := p.NameWithContext(ctx); err == nil {
			row.Name = name
		}
		if exe, err := p.ExeWithContext(ctx); err == nil {
			row.Exe = exe
		}
		if args, err := p.CmdlineSliceWithContext(ctx); err == nil {
			row.Cmdline = args
		}
		out = append(out, row)
	}
	return out, nil
}

var _ ProcessSource = SystemSource{}
