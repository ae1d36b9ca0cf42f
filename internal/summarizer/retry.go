package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy is a reusable retry policy value: total attempt budget, backoff
// shape, and a predicate deciding which errors are worth another attempt.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; each subsequent retry
	// doubles it, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Retryable reports whether the error may succeed on another attempt.
	// When nil, every error not classified permanent is retried.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the policy required of summarizer calls:
// up to attempts tries, exponential backoff base 1s doubling per attempt,
// capped at 10s.
func DefaultRetryPolicy(attempts int) RetryPolicy {
	if attempts < 1 {
		attempts = 3
	}
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the backoff delay after the given zero-based attempt, with
// multiplicative jitter in [0.5, 1.0). Delays are non-decreasing until the
// cap because the jitter factor is applied to a doubling base.
func (p RetryPolicy) Delay(attempt int, rng *rand.Rand) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if capped := float64(p.MaxDelay); backoff > capped {
		backoff = capped
	}
	if rng != nil {
		backoff *= 0.5 + rng.Float64()*0.5
	}
	return time.Duration(backoff)
}

// Retry invokes fn up to p.MaxAttempts times, sleeping the policy delay
// between attempts and aborting early on permanent errors or context
// cancellation. It returns fn's first success, or the last error wrapped
// with ErrTransientFailure once the attempt budget is exhausted.
func (p RetryPolicy) Retry(ctx context.Context, log *slog.Logger, fn func(ctx context.Context) error) error {
	if log == nil {
		log = slog.Default()
	}

	retryable := p.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return !IsPermanent(err) }
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		log.WarnContext(ctx, "summarizer attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", p.MaxAttempts),
			slog.String("error", err.Error()))

		if !retryable(err) {
			return err
		}

		// No sleep after the final attempt.
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.Delay(attempt, rng)
		log.DebugContext(ctx, "retrying after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}

	return fmt.Errorf("%w: exhausted %d attempts: %v", ErrTransientFailure, p.MaxAttempts, err)
}
