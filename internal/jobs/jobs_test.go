package jobs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/services"
)

var today = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	calls    int
	day      time.Time
	supplies []database.SupplyRecord
}

func (n *recordingNotifier) NotifyExpiring(_ context.Context, day time.Time, supplies []database.SupplyRecord) error {
	n.calls++
	n.day = day
	n.supplies = supplies
	return nil
}

func setupJobsDB(t *testing.T) *database.Context {
	t.Helper()
	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() {
		if err := database.CloseDatabase(dbCtx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})
	return dbCtx
}

func TestExpiryJobUsesInjectedClock(t *testing.T) {
	dbCtx := setupJobsDB(t)
	ctx := context.Background()
	supplies := services.NewSupplyService(dbCtx)

	todayDate := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	tomorrow := todayDate.AddDate(0, 0, 1)
	for _, rec := range []database.SupplyRecord{
		{Barcode: "A", Name: "Aspirin", Quantity: 1, ExpirationDate: &todayDate},
		{Barcode: "B", Name: "Bandage", Quantity: 1, ExpirationDate: &tomorrow},
		{Barcode: "C", Name: "Cold pack", Quantity: 1},
	} {
		if err := supplies.Save(ctx, rec, nil); err != nil {
			t.Fatalf("Save %s error: %v", rec.Barcode, err)
		}
	}

	notifier := &recordingNotifier{}
	job := NewExpiryJob(supplies, notifier, FixedClock(today))
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if notifier.calls != 1 || len(notifier.supplies) != 1 || notifier.supplies[0].Barcode != "A" {
		t.Fatalf("unexpected notification: %+v", notifier)
	}
	if !notifier.day.Equal(today) {
		t.Fatalf("expected notification day %v, got %v", today, notifier.day)
	}

	notifier = &recordingNotifier{}
	job = NewExpiryJob(supplies, notifier, FixedClock(today.AddDate(0, 0, 2)))
	if err := job.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if notifier.calls != 0 {
		t.Fatalf("notifier must not be called when nothing expires")
	}
}

type failingSource struct{}

func (failingSource) ExpiringOn(context.Context, time.Time) ([]database.SupplyRecord, error) {
	return nil, errors.New("boom")
}

func TestWriterNotifierAndFailures(t *testing.T) {
	var buf bytes.Buffer
	err := WriterNotifier{W: &buf}.NotifyExpiring(context.Background(), today, []database.SupplyRecord{
		{Barcode: "A", Name: "Aspirin"},
	})
	if err != nil {
		t.Fatalf("NotifyExpiring error: %v", err)
	}
	if got := buf.String(); got != "Aspirin expires today (2026-10-18) [A]\n" {
		t.Fatalf("unexpected notification text %q", got)
	}

	job := NewExpiryJob(failingSource{}, &recordingNotifier{}, FixedClock(today))
	if err := job.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestCacheCleanupJob(t *testing.T) {
	cache := filesystem.NewCache(t.TempDir())
	for _, name := range []string{"old.json", "fresh.json"} {
		if _, _, err := cache.Save(name, []byte(name)); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	old := today.Add(-48 * time.Hour)
	fresh := today.Add(-time.Hour)
	if err := os.Chtimes(cache.Path("old.json"), old, old); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}
	if err := os.Chtimes(cache.Path("fresh.json"), fresh, fresh); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}

	job := NewCacheCleanupJob(cache, 24*time.Hour, FixedClock(today))
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if job.Removed != 1 {
		t.Fatalf("expected 1 removed file, got %d", job.Removed)
	}
	if cache.Exists("old.json") || !cache.Exists("fresh.json") {
		t.Fatalf("unexpected cache contents after cleanup")
	}
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRunOnceRunsEveryJob(t *testing.T) {
	failing := &countingJob{err: errors.New("boom")}
	ok := &countingJob{}

	err := NewRunner(nil).RunOnce(context.Background(), failing, ok)
	if err == nil || !strings.Contains(err.Error(), "counting: boom") {
		t.Fatalf("expected joined job error, got %v", err)
	}
	if failing.runs.Load() != 1 || ok.runs.Load() != 1 {
		t.Fatalf("expected both jobs to run once")
	}
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	job := &countingJob{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewRunner(nil).RunEvery(ctx, 5*time.Millisecond, job)
	}()

	deadline := time.After(2 * time.Second)
	for job.runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("job did not repeat in time")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunEvery error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("RunEvery did not stop after cancel")
	}

	if err := NewRunner(nil).RunEvery(context.Background(), 0, job); err == nil {
		t.Fatalf("expected error for non-positive interval")
	}
}
