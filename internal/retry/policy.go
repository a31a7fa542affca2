// Package retry provides the shared backoff and failure-classification
// strategy used by the session client and the bulk-refresh driver.
// Transient failures are retried with jittered exponential backoff;
// deterministic failures surface immediately.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

// Policy is a stateless retry strategy, parameterized per call by the
// attempt number. Safe to share across concurrent pipeline runs.
type Policy struct {
	// MaxAttempts bounds total attempts, first try included.
	MaxAttempts int

	// Base is the delay after the first failed attempt.
	Base time.Duration

	// Max caps the deterministic backoff delay.
	Max time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64

	// Jitter is the randomization fraction applied when sleeping.
	// BackoffDelay stays deterministic so the schedule is inspectable.
	Jitter float64
}

// Default matches the configuration defaults: three network attempts
// with a 1s/2s schedule capped at 30s.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Base:        time.Second,
		Max:         30 * time.Second,
		Multiplier:  2,
		Jitter:      0.3,
	}
}

// ShouldRetry reports whether a failure of the given kind may be
// re-attempted at the given 1-based attempt number. Deterministic kinds
// (invalid input, unknown court, parse failures, exhausted captcha) are
// never retried: repetition cannot change their outcome.
func (p Policy) ShouldRetry(kind faults.Kind, attempt int) bool {
	return kind.Retryable() && attempt < p.MaxAttempts
}

// BackoffDelay returns the deterministic delay before the given 1-based
// attempt. Monotonically non-decreasing in the attempt number.
func (p Policy) BackoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := float64(p.Base)
	for i := 2; i < attempt; i++ {
		d *= p.Multiplier
		if d >= float64(p.Max) {
			return p.Max
		}
	}
	return min(time.Duration(d), p.Max)
}

// Run executes op, retrying per policy. After the budget is spent on a
// transient failure the error surfaces as exhausted_retries with the
// attempt count; non-retryable failures surface unchanged on first
// occurrence. Sleeps honor ctx cancellation.
func (p Policy) Run(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.Base
	bo.MaxInterval = p.Max
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = p.Jitter
	bo.MaxElapsedTime = 0 // bounded by attempts, not wall clock

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !p.ShouldRetry(faults.KindOf(err), attempt) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))

	if err != nil && faults.KindOf(err) == faults.KindTransient && attempt >= p.MaxAttempts {
		return &faults.Error{
			Kind:     faults.KindExhaustedRetries,
			Msg:      fmt.Sprintf("gave up after %d attempts", attempt),
			Attempts: attempt,
			Err:      err,
		}
	}
	return err
}
