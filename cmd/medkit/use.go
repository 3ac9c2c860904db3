package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/inventory"
	"github.com/medkit-app/medkit/internal/services"
)

func newUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Manage supply uses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom supply use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			id, err := services.NewSupplyUseService(dbCtx).Create(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added supply use '%s' (id %d)\n", args[0], id)
			return nil
		},
	})

	var format string
	list := &cobra.Command{
		Use:   "list",
		Short: "List supply uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			records, err := services.NewSupplyUseService(dbCtx).List(context.Background())
			if err != nil {
				return err
			}

			views := inventory.NewSupplyUseViews(records)
			if format == "json" {
				return outputJSON(cmd, views)
			}
			outputSupplyUseTable(cmd, views)
			return nil
		},
	}
	list.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom supply use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid supply use id: %s", args[0])
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			err = services.NewSupplyUseService(dbCtx).Delete(context.Background(), id)
			switch {
			case errors.Is(err, services.ErrNotFound):
				return fmt.Errorf("supply use %d not found", id)
			case errors.Is(err, database.ErrDefaultSupplyUse):
				return fmt.Errorf("supply use %d is a default and cannot be deleted", id)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted supply use %d\n", id)
			return nil
		},
	})

	return cmd
}
