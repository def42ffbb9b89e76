package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub token used by the api backend",
	Long: `The api backend (--github-backend api) looks for a token in GITHUB_TOKEN,
GH_TOKEN, the system keyring and finally 'gh auth token'. These commands
manage the keyring entry.`,
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store a GitHub token in the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := ui.PromptSecret("GitHub token")
		if err != nil {
			return err
		}
		if token == "" {
			return errors.New("empty token")
		}
		if err := github.StoreToken(token); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Token stored in the system keyring\n", ui.OKTag())
		return nil
	},
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored GitHub token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := github.ForgetToken(); err != nil {
			return fmt.Errorf("removing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Stored token removed\n", ui.OKTag())
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the GitHub token would come from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, source, err := (&github.TokenResolver{}).Resolve(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Token found (%s)\n", ui.OKTag(), source)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetTokenCmd, authClearCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
