package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizboard-service/internal/config"
)

// NewSeedCmd inserts the default question set into an empty bank.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default questions if the bank is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := newLogger(cfg)

			stores, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer stores.Close()
			return seedQuestions(cmd.Context(), stores.questions, log)
		},
	}
}
