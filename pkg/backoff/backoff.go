// Package backoff provides bounded exponential retry for idempotent reads.
//
// Only GET-style operations may be retried: mutating calls (approve, reject,
// force-sync, trigger) are never safe to repeat and must not go through this
// helper.
package backoff

import (
	"context"
	"math"
	"time"
)

// Policy controls retry behavior.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the first retry; subsequent delays grow
	// quadratically (base * attempt^2), matching the job-queue backoff curve.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
}

// DefaultPolicy is the small fixed budget used for graph store reads.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// Retry runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The last error is returned. fn must be idempotent.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := time.Duration(math.Min(
			float64(p.MaxDelay),
			float64(p.BaseDelay)*float64(attempt)*float64(attempt),
		))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
