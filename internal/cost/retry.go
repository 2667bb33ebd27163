package cost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the generation lookup retry loop.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	// NewBackOff overrides the delay schedule; tests use it to avoid sleeping.
	NewBackOff func() backoff.BackOff
}

// DefaultRetryPolicy allows 3 attempts with 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if p.NewBackOff != nil {
		b = p.NewBackOff()
	} else {
		b = exponentialBackOff(p.InitialInterval)
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// exponentialBackOff doubles the delay on every retry without jitter or an elapsed-time cap.
func exponentialBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	if initial <= 0 {
		initial = time.Second
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Lookup fetches generation metadata, retrying transient failures.
// Not-found and unauthorized responses fail immediately.
func Lookup(ctx context.Context, fetcher GenerationFetcher, id string, policy RetryPolicy) (*Generation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty generation id", ErrGenerationNotFound)
	}

	var (
		result   *Generation
		attempts int
	)
	operation := func() error {
		attempts++
		gen, err := fetcher.Generation(ctx, id)
		if err != nil {
			if errors.Is(err, ErrGenerationNotFound) || errors.Is(err, ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = gen
		return nil
	}

	if err := backoff.Retry(operation, policy.backOff(ctx)); err != nil {
		return nil, fmt.Errorf("generation lookup for %s failed after %d attempt(s): %w", id, attempts, err)
	}
	return result, nil
}
