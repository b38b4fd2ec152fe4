package godbtx

import (
	"context"
	"math"
	"time"
)

// BackoffCalculator returns the delay to wait before a retry attempt.
type BackoffCalculator func(retryCount uint32) time.Duration

func ExponentialBackoff(baseDelay, maxDelay time.Duration, backoffFactor float64) BackoffCalculator {
	return func(retryCount uint32) time.Duration {
		delay := float64(baseDelay) * math.Pow(backoffFactor, float64(retryCount))
		if maxDelay > 0 && delay > float64(maxDelay) {
			return maxDelay
		}
		return time.Duration(delay)
	}
}

func contextSleep(ctx context.Context, period time.Duration) error {
	select {
	case <-time.After(period):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
