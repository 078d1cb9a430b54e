package scheduler

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy is the same shape the teacher's job orchestrator uses
// (internal/jobs/orchestrator.RetryPolicy), trimmed to what the core's three
// retry budgets need (spec §5 "Retry policy": voice-note rebuild 3, daily
// rebuild 2, CHM batch 2).
type RetryPolicy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

// Retry policies named in spec §5.
var (
	RetryVoiceNoteRebuild = RetryPolicy{MaxAttempts: 3, MinBackoff: time.Second, MaxBackoff: 30 * time.Second}
	RetryDailyRebuild     = RetryPolicy{MaxAttempts: 2, MinBackoff: time.Second, MaxBackoff: 30 * time.Second}
	RetryCHMBatch         = RetryPolicy{MaxAttempts: 2, MinBackoff: time.Second, MaxBackoff: 30 * time.Second}
)

// Do runs fn up to policy.MaxAttempts times with exponential backoff,
// stopping early on ctx cancellation (spec §5 cancellation: "scheduled jobs
// are cancellable between steps").
func Do(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(policy, attempt)):
		}
	}
	return lastErr
}

func backoff(policy RetryPolicy, attempt int) time.Duration {
	minB := policy.MinBackoff
	maxB := policy.MaxBackoff
	if minB <= 0 {
		minB = time.Second
	}
	if maxB <= 0 {
		maxB = 30 * time.Second
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempt-1)))
	if d > maxB {
		d = maxB
	}
	jitter := float64(d) * 0.2
	return time.Duration(float64(d) - jitter + rand.Float64()*2*jitter)
}
