package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/medkit-app/medkit/internal/filesystem"
)

// CacheCleanupJob removes cached backup files older than MaxAge.
type CacheCleanupJob struct {
	cache  *filesystem.Cache
	maxAge time.Duration
	clock  Clock

	// Removed is the number of files deleted by the last run.
	Removed int
}

func NewCacheCleanupJob(cache *filesystem.Cache, maxAge time.Duration, clock Clock) *CacheCleanupJob {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CacheCleanupJob{cache: cache, maxAge: maxAge, clock: clock}
}

func (j *CacheCleanupJob) Name() string { return "clean-cache" }

func (j *CacheCleanupJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed, err := j.cache.PurgeOlderThan(j.clock.Now().Add(-j.maxAge))
	j.Removed = removed
	if err != nil {
		return fmt.Errorf("failed to purge backup cache: %w", err)
	}
	return nil
}
