package cli

import (
	"github.com/spf13/cobra"

	"quizboard-service/internal/config"
	"quizboard-service/internal/infra/postgres"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			applied, err := postgres.Migrate(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			newLogger(cfg).WithField("migrations", applied).Info("migrations applied")
			return nil
		},
	}
}
