package main

import (
	"github.com/issuetrack/tracker/persistent"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.InMem = false
		if err := cfg.Validate(); err != nil {
			return err
		}
		db, err := persistent.PgOpen(cmd.Context(), cfg.PostgresDsn, cfg.DbVerbose)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := persistent.CreateSchema(cmd.Context(), db); err != nil {
			return err
		}
		logrus.Infoln("Schema is up to date.")
		return nil
	},
}
