package cli

import (
	"context"
	"log/slog"

	"github.com/elevate-events/lounge/internal/app"
	"github.com/elevate-events/lounge/internal/config"
	"github.com/spf13/cobra"
)

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			application, err := app.New(ctx, cfg, logger, app.Options{Migrate: migrateUp})
			if err != nil {
				return err
			}

			return application.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	return cmd
}
