package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sailesh298-rgb/EMAIL/cmd"
	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
	"github.com/sailesh298-rgb/EMAIL/handlers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "email-service",
		Short: "Multi-tenant webmail backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(serveCmd, cmd.NewMigrateCmd(), cmd.NewBulkCreateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "email-service",
		Level: hclog.LevelFromString(os.Getenv("LOG_LEVEL")),
	})

	db, err := database.InitDB(cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.DatabaseDriver)

	if err := database.ApplyMigrations(db, cfg.DatabaseDriver); err != nil {
		return fmt.Errorf("error applying database migrations: %w", err)
	}
	logger.Info("database migrations applied")

	r := handlers.NewRouter(cfg, db, logger)

	logger.Info("server starting", "port", cfg.Port)
	return http.ListenAndServe(":"+cfg.Port, r)
}
