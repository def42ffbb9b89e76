// Package cli implements the idekotlin command-line interface using Cobra.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/majorcontext/idekotlin/internal/config"
	"github.com/majorcontext/idekotlin/internal/log"
	"github.com/majorcontext/idekotlin/internal/ui"
)

var (
	verbose bool

	// cfg is loaded before every command. cfgErr keeps a load failure so
	// doctor can report it while other commands fail on it.
	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "idekotlin",
	Short: "Resolve the Kotlin compiler bundled with IntelliJ IDEA and Android Studio",
	Long: `idekotlin fetches current IntelliJ IDEA and Android Studio releases, finds the
Kotlin compiler each platform build bundles, and maps IDE-flavored compiler
versions (such as 2.2.20-ij252-24) to the closest public dev build.

The result is printed as a table and as a mapOf(...) literal ready to paste
into a build configuration.

GitHub is queried through the gh CLI by default; run 'gh auth login' first,
or select the REST backend with --github-backend api and a GITHUB_TOKEN.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgErr = config.Load()
		if cfgErr != nil {
			cfg = config.Default()
		}

		if err := log.Init(log.Options{
			Verbose:       verbose,
			DebugDir:      config.DebugDir(),
			RetentionDays: cfg.Debug.RetentionDays,
			Stderr:        cmd.ErrOrStderr(),
		}); err != nil {
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
	RunE: runResolve,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addResolveFlags(rootCmd, &resolveFlags)
}
