package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/config"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/database"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Register users and properties in the Postgres directory",
	}

	var name string
	addUser := &cobra.Command{
		Use:   "add-user",
		Short: "Register a user and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				u, err := repository.NewUserRepository(pool).Create(cmd.Context(), name)
				if err != nil {
					return err
				}
				cmd.Println(u.ID)
				return nil
			})
		},
	}
	addUser.Flags().StringVar(&name, "name", "", "full name")
	_ = addUser.MarkFlagRequired("name")

	var ownerID, address, city string
	addProperty := &cobra.Command{
		Use:   "add-property",
		Short: "Register a property and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				ctx := cmd.Context()
				if _, err := repository.NewUserRepository(pool).GetUser(ctx, ownerID); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return fmt.Errorf("owner %s not found", ownerID)
					}
					return err
				}
				p, err := repository.NewPropertyRepository(pool).Create(ctx, ownerID, address, city)
				if err != nil {
					return err
				}
				cmd.Println(p.ID)
				return nil
			})
		},
	}
	addProperty.Flags().StringVar(&ownerID, "owner", "", "owner user id")
	addProperty.Flags().StringVar(&address, "address", "", "street address")
	addProperty.Flags().StringVar(&city, "city", "", "city")
	_ = addProperty.MarkFlagRequired("owner")

	cmd.AddCommand(addUser, addProperty)
	return cmd
}

func withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.Database, logger.New(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}
