// cmd/match-service/retry.go
package main

import (
	"context"
	"fmt"
	"time"

	"mentor-match/internal/common/logger"
)

// retryWithBackoff runs operation until it succeeds, maxRetries is reached,
// ctx is cancelled or shouldRetry rejects the error. The delay doubles after
// every failed attempt. A nil shouldRetry retries every error.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration,
	shouldRetry func(error) bool, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return fmt.Errorf("%s failed: %w", operationName, err)
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
