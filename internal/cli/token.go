package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/models"
)

var tokenFlags struct {
	userID int64
	email  string
	staff  bool
	ttl    time.Duration
}

type tokenConfig struct {
	Secret string `env:"AUTH_TOKEN_SECRET,required"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an identity token for local testing",
	Long: `Issue a signed identity token for a user. Exchange it for a session
with POST /auth/session or send it as a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg tokenConfig
		if err := env.Parse(&cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		verifier, err := auth.NewVerifier(cfg.Secret)
		if err != nil {
			return err
		}
		token, err := verifier.Issue(models.Shopper{
			UserID: tokenFlags.userID,
			Email:  tokenFlags.email,
			Staff:  tokenFlags.staff,
		}, tokenFlags.ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenFlags.userID, "user-id", 0, "user id the token identifies")
	tokenCmd.Flags().StringVar(&tokenFlags.email, "email", "", "email address carried by the token")
	tokenCmd.Flags().BoolVar(&tokenFlags.staff, "staff", false, "grant staff access")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user-id")
}
