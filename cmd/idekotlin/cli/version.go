package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of idekotlin",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "idekotlin %s\n", version)
		if commit != "none" {
			fmt.Fprintf(w, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(w, "  built:  %s\n", date)
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(w, "  go:     %s\n", info.GoVersion)
		}
	},
}
