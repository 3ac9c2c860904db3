package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/application"
	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/inventory"
	"github.com/medkit-app/medkit/internal/services"
)

func newSupplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Manage supplies",
	}

	cmd.AddCommand(newSupplyAddCmd())
	cmd.AddCommand(newSupplyListCmd())
	cmd.AddCommand(newSupplyGetCmd())
	cmd.AddCommand(newSupplyDeleteCmd())
	cmd.AddCommand(newSupplyExpiringCmd())

	return cmd
}

func newSupplyAddCmd() *cobra.Command {
	var (
		quantity  int64
		expires   string
		container string
		uses      []string
	)

	cmd := &cobra.Command{
		Use:   "add <barcode> <name>",
		Short: "Add a supply or update an existing one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			rec, err := application.SaveSupply(context.Background(), dbCtx, application.SaveSupplyInput{
				Barcode:   args[0],
				Name:      args[1],
				Quantity:  quantity,
				Expires:   expires,
				Container: container,
				Uses:      uses,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved supply '%s' (%s)\n", rec.Name, rec.Barcode)
			return nil
		},
	}

	cmd.Flags().Int64Var(&quantity, "quantity", 1, "Number of units")
	cmd.Flags().StringVar(&expires, "expires", "", "Expiration date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&container, "container", "", "Barcode of the container holding the supply")
	cmd.Flags().StringSliceVar(&uses, "use", nil, "Supply use id or name (repeatable)")

	return cmd
}

func newSupplyListCmd() *cobra.Command {
	var (
		format    string
		container string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supplies",
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
			svc := services.NewSupplyService(dbCtx)

			var records []database.SupplyRecord
			if container != "" {
				records, err = svc.ListByContainer(ctx, container)
			} else {
				records, err = svc.List(ctx)
			}
			if err != nil {
				return err
			}

			views := inventory.NewSupplyViews(records, time.Now())
			if format == "json" {
				return outputJSON(cmd, views)
			}
			outputSupplyTable(cmd, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&container, "container", "", "Only list supplies in this container")

	return cmd
}

func newSupplyGetCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <barcode>",
		Short: "Show one supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			detail, err := services.NewSupplyService(dbCtx).Get(context.Background(), args[0])
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return fmt.Errorf("supply '%s' not found", args[0])
				}
				return err
			}

			view := inventory.NewSupplyDetailView(detail, time.Now())
			if format == "json" {
				return outputJSON(cmd, view)
			}
			outputSupplyDetail(cmd, view)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func newSupplyDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <barcode>",
		Short: "Delete a supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode := args[0]

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete supply '%s'? (y/N) ", barcode))
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

			deleted, err := services.NewSupplyService(dbCtx).Delete(context.Background(), barcode)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("supply '%s' not found", barcode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted supply '%s'\n", barcode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func newSupplyExpiringCmd() *cobra.Command {
	var (
		format  string
		date    string
		expired bool
	)

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List supplies expiring today (or on --date)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			day := time.Now()
			if date != "" {
				parsed, err := application.ParseDate(date)
				if err != nil {
					return err
				}
				day = parsed
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			svc := services.NewSupplyService(dbCtx)
			var records []database.SupplyRecord
			if expired {
				records, err = svc.ExpiredBefore(context.Background(), day)
			} else {
				records, err = svc.ExpiringOn(context.Background(), day)
			}
			if err != nil {
				return err
			}

			views := inventory.NewSupplyViews(records, day)
			if format == "json" {
				return outputJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to report")
				return nil
			}
			outputSupplyTable(cmd, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&date, "date", "", "Day to check (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&expired, "expired", false, "List supplies that expired before the day instead")

	return cmd
}

func confirm(cmd *cobra.Command, message string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Fprint(cmd.ErrOrStderr(), message)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y", nil
}
