package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/inventory"
	"github.com/medkit-app/medkit/internal/services"
)

func newContainerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Manage kits, bags and cabinets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <barcode> <name>",
		Short: "Add a container or rename an existing one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			if err := services.NewContainerService(dbCtx).Save(context.Background(), database.ContainerRecord{
				Barcode: args[0],
				Name:    args[1],
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved container '%s' (%s)\n", args[1], args[0])
			return nil
		},
	})

	cmd.AddCommand(newContainerListCmd())
	cmd.AddCommand(newContainerDeleteCmd())

	return cmd
}

func newContainerListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List containers",
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

			ctx := context.Background()
			records, err := services.NewContainerService(dbCtx).List(ctx)
			if err != nil {
				return err
			}

			supplies := services.NewSupplyService(dbCtx)
			views := make([]inventory.ContainerView, 0, len(records))
			for _, rec := range records {
				contents, err := supplies.ListByContainer(ctx, rec.Barcode)
				if err != nil {
					return err
				}
				views = append(views, inventory.ContainerView{Barcode: rec.Barcode, Name: rec.Name, Supplies: len(contents)})
			}

			if format == "json" {
				return outputJSON(cmd, views)
			}
			outputContainerTable(cmd, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func newContainerDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <barcode>",
		Short: "Delete a container; its supplies are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode := args[0]

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete container '%s'? Supplies inside it are kept. (y/N) ", barcode))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
					return nil
				}
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			deleted, err := services.NewContainerService(dbCtx).Delete(context.Background(), barcode)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("container '%s' not found", barcode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted container '%s'\n", barcode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
