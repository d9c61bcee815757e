package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vgi/internal/inject"
)

func newStatusCmd() *cobra.Command {
	var f injectFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is currently injected without changing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, f injectFlags) error {
	opts, err := resolveOptions(f)
	if err != nil {
		return err
	}

	svc := inject.NewService(opts, nil)
	svc.Prompter = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status, err := svc.Status(ctx)
	if err != nil {
		return err
	}

	if outputJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	writeStatusTable(cmd, opts.Name, status)
	return nil
}

func writeStatusTable(cmd *cobra.Command, name string, status *inject.StatusReport) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)

	fmt.Fprintf(w, "steam root\t%s\n", status.SteamRoot)
	fmt.Fprintf(w, "profile\t%s\n", status.ProfileID)
	fmt.Fprintf(w, "shortcuts\t%s\n", status.ShortcutsVDF)
	fmt.Fprintf(w, "config\t%s\n", status.ConfigVDF)
	fmt.Fprintf(w, "prefix\t%s\n", status.Prefix)
	fmt.Fprintf(w, "executable\t%s\n", status.ExeRel)
	fmt.Fprintf(w, "steam running\t%s\n", yesNo(status.SteamRunning))

	if status.EntryPresent {
		fmt.Fprintf(w, "shortcut %q\tslot %s, appid %d\n", name, status.Slot, status.AppID)
		fmt.Fprintf(w, "rungameid\t%d\n", status.LaunchID)
		if status.LaunchOptions != "" {
			fmt.Fprintf(w, "launch options\t%s\n", status.LaunchOptions)
		} else {
			fmt.Fprintf(w, "launch options\t(none captured)\n")
		}
	} else {
		fmt.Fprintf(w, "shortcut %q\tnot injected\n", name)
	}

	if status.MappingPresent {
		fmt.Fprintf(w, "proton mapping\t%s (priority %d)\n", status.ProtonTool, status.Priority)
	} else {
		fmt.Fprintf(w, "proton mapping\tnot set\n")
	}
	w.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
