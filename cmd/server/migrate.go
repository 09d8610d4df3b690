package main

import (
	"fmt"

	"github.com/daystreak/api/internal/config"
	"github.com/daystreak/api/internal/infra/db"
	"github.com/daystreak/api/internal/infra/logger"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			d, err := db.New(cfg, log)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := db.Migrate(d); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Sugar().Info("schema up to date")
			return nil
		},
	}
}
