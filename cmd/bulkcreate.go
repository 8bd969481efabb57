package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sailesh298-rgb/EMAIL/config"
	"github.com/sailesh298-rgb/EMAIL/database"
	"github.com/sailesh298-rgb/EMAIL/services"
)

// NewBulkCreateCmd returns the command that provisions accounts offline from
// a JSON file holding an array of {email, password, display_name} objects.
func NewBulkCreateCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "bulk-create [accounts file]",
		Short: "Create email accounts in bulk from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := readAccountsFile(args[0])
			if err != nil {
				return err
			}

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

			logger := hclog.New(&hclog.LoggerOptions{Name: "email-service"})
			svc := services.NewAccountService(cfg, db, logger)
			result := svc.BulkCreate(accounts, domain)

			fmt.Printf("Created %d of %d accounts.\n", result.Created, len(accounts))
			for _, e := range result.Errors {
				fmt.Println("  error:", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "domain the accounts belong to (welcome email sender)")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

// readAccountsFile loads and validates the bulk-create input file.
func readAccountsFile(path string) ([]services.NewAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var accounts []services.NewAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("accounts file %s contains no accounts", path)
	}
	return accounts, nil
}
