package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/jobs"
	"github.com/medkit-app/medkit/internal/services"
)

func newJobsCmd() *cobra.Command {
	var (
		every    bool
		interval string
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run maintenance jobs once, or repeatedly with --every",
	}
	cmd.PersistentFlags().BoolVar(&every, "every", false, "Repeat at the configured [jobs] interval until interrupted")
	cmd.PersistentFlags().StringVar(&interval, "interval", "", "Override the repeat interval (e.g. 1h)")

	run := func(job jobs.Job) error {
		runner := jobs.NewRunner(logger)
		if !every {
			return runner.RunOnce(context.Background(), job)
		}

		period := settings.Jobs.IntervalDuration()
		if interval != "" {
			d, err := time.ParseDuration(interval)
			if err != nil {
				return fmt.Errorf("invalid interval %q: %w", interval, err)
			}
			period = d
		}

		ctx, cancel := signalContext()
		defer cancel()
		return runner.RunEvery(ctx, period, job)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "expiry",
		Short: "Report supplies that expire today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			notifier := jobs.WriterNotifier{W: cmd.OutOrStdout()}
			return run(jobs.NewExpiryJob(services.NewSupplyService(dbCtx), notifier, jobs.SystemClock{}))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clean-cache",
		Short: "Remove cached backups older than [backup] cache_max_age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job := jobs.NewCacheCleanupJob(filesystem.NewCache(""), settings.Backup.CacheMaxAgeDuration(), jobs.SystemClock{})
			if err := run(job); err != nil {
				return err
			}
			if !every {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached backup(s)\n", job.Removed)
			}
			return nil
		},
	})

	return cmd
}
