package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vgi/internal/procwatch"
	"vgi/internal/tui"
)

func newCaptureCmd() *cobra.Command {
	var f injectFlags
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Watch for a game launch and print the captured arguments",
		Long: "capture waits for the game process to appear and prints the arguments\n" +
			"following the marker on its command line. Nothing is written; use inject\n" +
			"to store the result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCapture(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

func runCapture(cmd *cobra.Command, f injectFlags) error {
	opts, err := resolveOptions(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	watcher := procwatch.New(procwatch.SystemSource{}, opts.Interval, opts.Timeout)

	out := cmd.OutOrStdout()
	work := func() (string, bool, error) {
		return watcher.Await(ctx, opts.Marker)
	}

	var options string
	var found bool
	if !outputJSON && tui.IsTerminal(out) {
		options, found, err = tui.RunCapture(out, opts.Marker, watcher.Timeout, work)
	} else {
		options, found, err = work()
	}
	if err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			Found   bool   `json:"found"`
			Options string `json:"options"`
		}{Found: found, Options: options}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if !found {
		fmt.Fprintf(out, "no %s launch seen within %s\n", opts.Marker, watcher.Timeout)
		return nil
	}
	fmt.Fprintf(out, "captured: %s\n", options)
	return nil
}
