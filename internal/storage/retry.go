package storage

import (
	"context"
	"fmt"
	"time"
)

// retryBackoff is the base wait between attempts; attempt i waits i*retryBackoff.
var retryBackoff = 500 * time.Millisecond

// retry retries fn up to attempts times with linear backoff.
func retry[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(i+1) * retryBackoff):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
