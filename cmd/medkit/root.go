package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/config"
	"github.com/medkit-app/medkit/internal/database"
)

var (
	configPath string
	dbPath     string

	settings *config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "medkit",
	Short:        "medkit - a first-aid kit inventory",
	Long:         "medkit tracks first-aid supplies, the containers they live in and when they expire.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if configPath != "" {
			settings, err = config.LoadFile(configPath)
		} else {
			settings, err = config.Load()
		}
		if err != nil {
			return err
		}
		logger = newLogger(cmd.ErrOrStderr(), settings.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default: $MEDKIT_CONFIG or XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the inventory database (default: $MEDKIT_DIR/inventory.db)")

	rootCmd.AddCommand(newSupplyCmd())
	rootCmd.AddCommand(newContainerCmd())
	rootCmd.AddCommand(newUseCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func newLogger(w io.Writer, cfg config.LogSettings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDatabase opens the inventory and runs pending migrations.
func openDatabase() (*database.Context, error) {
	dbCtx, err := database.CreateDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	return dbCtx, nil
}

func closeDatabase(dbCtx *database.Context) {
	if err := database.CloseDatabase(dbCtx); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
