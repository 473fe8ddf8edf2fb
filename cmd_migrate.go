package main

import (
	"github.com/Tetsu-is/social-graph/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations to the configured database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := database.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			logger.Info("schema is up to date")
			return nil
		}
		logger.Info("migrations applied", zap.Strings("versions", applied))
		return nil
	},
}
