package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Config controls Do.
type Config struct {
	MaxAttempts int
	Backoff     Backoff
	Logger      *slog.Logger
	// Permanent errors stop retrying immediately.
	Permanent []error
}

// Do calls fn until it succeeds, the attempts run out, a permanent error occurs or ctx is done.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = DefaultBackoff()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if isPermanent(lastErr, cfg.Permanent) || attempt == attempts {
			break
		}

		delay := backoff.Next(attempt)
		if cfg.Logger != nil {
			cfg.Logger.Warn("retrying after error", "error", lastErr, "attempt", attempt, "max_attempts", attempts, "backoff", delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return lastErr
}

func isPermanent(err error, permanent []error) bool {
	for _, p := range permanent {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}
