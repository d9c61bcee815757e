// Package cli wires the cobra command tree and maps pipeline failures to
// distinct exit codes so scripts can react to each class of problem.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vgi/internal/inject"
	"vgi/internal/logx"
)

// Exit codes, one per failure class.
const (
	ExitOK           = 0
	ExitSteamRunning = 1
	ExitNotFound     = 2
	ExitNeedsPrompt  = 3
	ExitBadExe       = 4
	ExitInternal     = 99
)

var (
	configPath string
	cachePath  string
	outputJSON bool
	noPrompt   bool
	verbose    bool
)

// Execute runs the root cobra command and exits with the code matching the
// failure class. Failures print a short message and land in the run log with
// full detail.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logFailure(err)
		os.Exit(exitCode(err))
	}
}

func logFailure(err error) {
	dir, dirErr := logx.DefaultDir()
	if dirErr != nil {
		return
	}
	logger, closer, openErr := logx.New(dir)
	if openErr != nil {
		return
	}
	defer closer.Close()
	logger.Printf("fatal (exit %d): %+v", exitCode(err), err)
}

func exitCode(err error) int {
	var pre *inject.PreconditionError
	var disc *inject.DiscoveryError
	var exe *inject.ExeError
	switch {
	case errors.As(err, &pre):
		return ExitSteamRunning
	case errors.As(err, &disc):
		return ExitNotFound
	case errors.Is(err, inject.ErrPromptRequired):
		return ExitNeedsPrompt
	case errors.As(err, &exe):
		return ExitBadExe
	}
	return ExitInternal
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vgi",
		Short: "Inject the EVE Vanguard EAC wrapper as a Steam shortcut",
		Long: "vgi adds a non-Steam shortcut for EVE Vanguard's anti-cheat wrapper,\n" +
			"captures the launch arguments from a live run, and maps a Proton tool\n" +
			"so the shortcut starts under the right compatibility layer.",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the settings file")
	cmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Path to the run cache")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVar(&noPrompt, "no-prompt", false, "Fail instead of asking interactive questions")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Write a detailed run log")

	cmd.AddCommand(newInjectCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCaptureCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
