package main

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/learnpath/internal/config"
	pgInfra "github.com/fastygo/learnpath/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := commandLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			if path == "" {
				path = cfg.Migrations.Path
			}
			return pgInfra.Migrate(cfg.Database, path, log)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")
	return cmd
}
