package coubapi

import "context"

// withRetry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. A negative budget retries indefinitely; zero means
// a single attempt. Cancellation is observed between attempts.
func withRetry(ctx context.Context, maxRetries int, retryable func(error) bool, fn func() error) error {
	var lastErr error
	for attempt := 0; maxRetries < 0 || attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
