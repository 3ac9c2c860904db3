package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/medkit-app/medkit/internal/database"
)

// ExpiringSource answers the "what expires on this day" query.
type ExpiringSource interface {
	ExpiringOn(ctx context.Context, day time.Time) ([]database.SupplyRecord, error)
}

// Notifier delivers the list of supplies expiring on day. It is only called
// when the list is non-empty.
type Notifier interface {
	NotifyExpiring(ctx context.Context, day time.Time, supplies []database.SupplyRecord) error
}

// ExpiryJob reports supplies whose expiration date is the clock's current day.
type ExpiryJob struct {
	source   ExpiringSource
	notifier Notifier
	clock    Clock
}

func NewExpiryJob(source ExpiringSource, notifier Notifier, clock Clock) *ExpiryJob {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ExpiryJob{source: source, notifier: notifier, clock: clock}
}

func (j *ExpiryJob) Name() string { return "expiry" }

// Check returns the supplies expiring today without notifying anyone.
func (j *ExpiryJob) Check(ctx context.Context) ([]database.SupplyRecord, error) {
	supplies, err := j.source.ExpiringOn(ctx, j.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring supplies: %w", err)
	}
	return supplies, nil
}

func (j *ExpiryJob) Run(ctx context.Context) error {
	supplies, err := j.Check(ctx)
	if err != nil {
		return err
	}
	if len(supplies) == 0 || j.notifier == nil {
		return nil
	}
	if err := j.notifier.NotifyExpiring(ctx, j.clock.Now(), supplies); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// WriterNotifier prints one line per expiring supply.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) NotifyExpiring(_ context.Context, day time.Time, supplies []database.SupplyRecord) error {
	for _, s := range supplies {
		if _, err := fmt.Fprintf(n.W, "%s expires today (%s) [%s]\n", s.Name, database.FormatDate(day), s.Barcode); err != nil {
			return err
		}
	}
	return nil
}

// LogNotifier records expiring supplies in the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyExpiring(_ context.Context, day time.Time, supplies []database.SupplyRecord) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, s := range supplies {
		logger.Warn("supply expires today", "barcode", s.Barcode, "name", s.Name, "day", database.FormatDate(day))
	}
	return nil
}
