package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/majorcontext/idekotlin/internal/config"
	"github.com/majorcontext/idekotlin/internal/doctor"
	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and GitHub access",
	Long: `Prints the effective configuration, the minimum Kotlin version a run from
the current directory would use, and whether the configured GitHub backend
can make authenticated calls. Tokens are redacted.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, ui.Bold("idekotlin doctor"))
	fmt.Fprintln(w)

	wd, _ := os.Getwd()
	gh := &doctor.GitHubSection{API: newAPI(cmd.Context(), cfg)}
	if cfg.GitHub.Backend == config.BackendAPI {
		gh.Tokens = &github.TokenResolver{}
	}

	reg := doctor.NewRegistry(
		&doctor.VersionSection{Version: version, Commit: commit},
		&doctor.ConfigSection{Path: config.Path(), Config: cfg, Err: cfgErr},
		&doctor.PinSection{Dir: wd},
		gh,
	)
	if failed := reg.Run(w); failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(reg.Sections()))
	}
	return nil
}
