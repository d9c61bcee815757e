package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vgi/internal/inject"
	"vgi/internal/tui"
)

const disclaimer = "This tool rewrites Steam's shortcut and compat stores. Backups are taken\n" +
	"before every write, but close Steam first and keep your own copies of\n" +
	"anything you cannot afford to lose."

func newInjectCmd() *cobra.Command {
	var f injectFlags
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Add the shortcut, capture launch options, and map Proton",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInject(cmd, f)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Resolve and report without writing anything")
	cmd.Flags().BoolVar(&f.skipCapture, "skip-capture", false, "Do not wait for a game launch")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "Ignore the run cache and rediscover paths")
	cmd.Flags().BoolVar(&f.force, "force", false, "Write even if Steam appears to be running")
	return cmd
}

func runInject(cmd *cobra.Command, f injectFlags) error {
	opts, err := resolveOptions(f)
	if err != nil {
		return err
	}

	logger, closer, err := newRunLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	var l inject.Logger
	if logger != nil {
		l = logger
	}
	svc := inject.NewService(opts, l)
	svc.Prompter = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	out := cmd.OutOrStdout()
	if !outputJSON {
		fmt.Fprintln(out, disclaimer)
		fmt.Fprintln(out)
	}
	if !opts.DryRun && !opts.SkipCapture && !outputJSON && tui.IsTerminal(out) {
		svc.Capture = func(marker string, timeout time.Duration, work func() (string, bool, error)) (string, bool, error) {
			return tui.RunCapture(out, marker, timeout, work)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if report.DryRun {
		fmt.Fprintln(out, "Dry run; nothing was written.")
	}
	verb := "updated"
	if report.Created {
		verb = "created"
	}
	fmt.Fprintf(out, "Shortcut %q %s at slot %s (appid %d)\n", opts.Name, verb, report.Slot, report.AppID)
	fmt.Fprintf(out, "  store:   %s\n", report.ShortcutsVDF)
	fmt.Fprintf(out, "  compat:  %s -> %s (key %d)\n", report.ConfigVDF, opts.ProtonTool, report.CompatKey)
	fmt.Fprintf(out, "  rungame: steam://rungameid/%d\n", report.LaunchID)
	if report.Captured {
		fmt.Fprintf(out, "  options: %s\n", report.LaunchOptions)
	} else if !opts.SkipCapture && !report.DryRun {
		fmt.Fprintln(out, "  options: not captured; run again after launching the game once")
	}
	return nil
}
