package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quizboard-service/internal/auth"
	"quizboard-service/internal/config"
	"quizboard-service/internal/domain"
)

// NewTokenCmd mints a signed token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var userID, name string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed JWT for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			provider, err := auth.NewJWTProvider(cfg.Auth.JWTSecret)
			if err != nil {
				return err
			}
			token, err := provider.Issue(domain.User{ID: userID, DisplayName: name},
				config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (sub claim)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
