// Package cmd holds the administrative subcommands of the email-service
// binary. The serve command lives in main; everything here runs against the
// configured database and exits.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
)

// NewMigrateCmd returns the command that applies schema migrations and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db, err := database.InitDB(cfg.DatabaseDriver, cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.ApplyMigrations(db, cfg.DatabaseDriver); err != nil {
				return err
			}
			fmt.Println("Database migrations applied successfully.")
			return nil
		},
	}
}
