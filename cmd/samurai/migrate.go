package main

import (
	"errors"

	"github.com/spf13/cobra"

	"samurai/internal/app"
	"samurai/internal/repositories"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the accounts schema in Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if !cfg.AccountsEnabled() {
			return errors.New("database.url is not set")
		}
		db, err := app.OpenDB(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repositories.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}
