package main

import (
	"github.com/spf13/cobra"

	"github.com/antscrawling/cpfsim/internal/infrastructure/postgres"
)

func (c *cli) migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "PostgreSQL schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := c.config()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := c.config()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}
