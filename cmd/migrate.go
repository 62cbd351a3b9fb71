package main

import (
	"fmt"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/config"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := database.Migrate(cfg.Database); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(cfg.Database, steps); err != nil {
				return err
			}
			cmd.Printf("Rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
