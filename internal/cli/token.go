package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lms-quiz-service/internal/auth"
	"lms-quiz-service/internal/config"
	"lms-quiz-service/internal/domain"
)

// NewTokenCmd issues a signed token for local testing against the API.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID   string
		username string
		role     string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			secret := cfg.Auth.JWTSecret
			if secret == "" {
				secret = devJWTSecret
			}
			tok, err := auth.NewAuthenticator(secret).Issue(userID, username, domain.NormalizeRole(role), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&username, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStudent), "STUDENT, INSTRUCTOR or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
