package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/backup"
	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/usecase"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import hashed JSON backups",
	}

	cmd.AddCommand(newBackupExportCmd())
	cmd.AddCommand(newBackupImportCmd())
	cmd.AddCommand(newBackupCacheCmd())

	return cmd
}

func newBackupExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup to stdout or --output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			ctx, cancel := signalContext()
			defer cancel()

			uc := usecase.NewBackup(dbCtx, settings.Backup.Salt, nil, logger)

			if output == "" || output == "-" {
				return uc.Export(ctx, cmd.OutOrStdout())
			}

			//nolint:gosec // G304: path is chosen by the operator
			f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			if err := uc.Export(ctx, f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close backup file: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Backup written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: stdout)")

	return cmd
}

func newBackupImportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the inventory with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				ok, err := confirm(cmd, "Importing replaces every supply, container and custom use. Continue? (y/N) ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			ctx, cancel := signalContext()
			defer cancel()

			uc := usecase.NewBackup(dbCtx, settings.Backup.Salt, nil, logger)
			err = uc.ImportFile(ctx, args[0])
			switch {
			case errors.Is(err, backup.ErrHashMismatch):
				return fmt.Errorf("backup is corrupted or was written with another salt: %w", err)
			case errors.Is(err, backup.ErrVersionMismatch):
				return fmt.Errorf("backup was written by another schema version: %w", err)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func newBackupCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Write a backup into the cache directory and print its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			ctx, cancel := signalContext()
			defer cancel()

			uc := usecase.NewBackup(dbCtx, settings.Backup.Salt, filesystem.NewCache(""), logger)
			path, err := uc.ExportInCache(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
