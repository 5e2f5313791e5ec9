package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/scriptdeck/internal/download"
	"github.com/jmgilman/scriptdeck/internal/secret"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and verify download tokens",
	Long: `Issue and verify result file download tokens.

Tokens are signed with the server secret and bound to the identity they
were issued for. They expire after the configured download.token_ttl.`,
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <file>",
	Short: "Issue a download token for a result file",
	Example: `  # Issue a token for the configured owner
  scriptdeck token issue /tmp/scriptdeck/result_files/alice/1f3b.../report.txt

  # Issue a token for a specific identity
  scriptdeck token issue --owner alice report.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := loadSigner(cmd)
		if err != nil {
			return err
		}

		ownerFlag, err := cmd.Flags().GetString("owner")
		if err != nil {
			return fmt.Errorf("get owner flag: %w", err)
		}

		owner := resolveOwner(cmd.Context(), ownerFlag)
		fmt.Println(signer.Sign(args[0], owner, time.Now()))
		return nil
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <file> <token>",
	Short: "Verify a download token",
	Example: `  # Verify a token issued to alice for report.txt
  scriptdeck token verify --owner alice report.txt eyJ...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := loadSigner(cmd)
		if err != nil {
			return err
		}

		ownerFlag, err := cmd.Flags().GetString("owner")
		if err != nil {
			return fmt.Errorf("get owner flag: %w", err)
		}

		owner := resolveOwner(cmd.Context(), ownerFlag)
		if err := signer.Validate(args[1], args[0], owner, time.Now()); err != nil {
			return err
		}
		fmt.Println("token is valid")
		return nil
	},
}

// loadSigner builds a token signer from the persisted server secret.
func loadSigner(cmd *cobra.Command) (*download.Signer, error) {
	engine, err := requireEngine(cmd.Context())
	if err != nil {
		return nil, err
	}
	cfg := ConfigFromContext(cmd.Context())

	store := secret.NewStore(cfg.Storage.Temp, engine.Logger)
	serverSecret, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load server secret: %w", err)
	}

	return download.NewSigner(serverSecret, cfg.TokenTTL()), nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenVerifyCmd)

	tokenCmd.PersistentFlags().String("owner", "", "identity the token is bound to")
}
