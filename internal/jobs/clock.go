// Package jobs holds the maintenance tasks that run outside the request path:
// the expiry notification and the backup cache cleanup. Jobs never schedule
// themselves. Callers trigger Run directly or through RunEvery.
package jobs

import "time"

// Clock supplies the current time to jobs.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
