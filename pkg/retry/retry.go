// Package retry runs an operation under a bounded retry policy with
// exponential backoff and jitter.
//
// A [Policy] is a plain value: attempts, delays, jitter and the predicate that
// decides which failures are worth retrying. Tests substitute Sleep and Rand to
// run without waiting.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"syscall"
	"time"
)

// Defaults used by [Default].
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 8 * time.Second
	DefaultJitter      = 0.25
)

// Attempt describes a failed attempt that is about to be retried.
type Attempt struct {
	Number int           // 1-based number of the attempt that failed.
	Err    error         // The failure.
	Delay  time.Duration // Backoff before the next attempt.
}

// Policy configures [Policy.Do].
type Policy struct {
	MaxAttempts int           // Total attempts including the first (min 1).
	BaseDelay   time.Duration // Delay after the first failure; doubles per attempt.
	MaxDelay    time.Duration // Upper bound on the jittered delay (0 = unbounded).
	Jitter      float64       // Fractional jitter applied to each delay, e.g. 0.25 for ±25%.

	// Transient reports whether err may be resolved by retrying unchanged.
	// Defaults to IsTransient.
	Transient func(err error) bool
	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(Attempt)

	// Sleep waits for d or until ctx is done. Defaults to a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error
	// Rand returns a float64 in [0,1) used for jitter. Defaults to rand.Float64.
	Rand func() float64
}

// Default returns the standard completion retry policy: three attempts with
// delays of roughly 1s and 2s, capped at 8s, ±25% jitter.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Jitter:      DefaultJitter,
	}
}

// ExhaustedError is returned when every attempt failed with a transient error.
// Last is the failure of the final attempt; Unwrap exposes it so callers can
// inspect the root cause with errors.As.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempt budget is spent. Non-transient errors are returned unchanged.
// Exhaustion returns *ExhaustedError carrying the last failure.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	transient := p.Transient
	if transient == nil {
		transient = IsTransient
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = contextSleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !transient(err) {
			return err
		}

		lastErr = err

		if attempt == attempts {
			break
		}

		delay := p.Backoff(attempt, err)
		if p.OnRetry != nil {
			p.OnRetry(Attempt{Number: attempt, Err: err, Delay: delay})
		}

		if serr := sleep(ctx, delay); serr != nil {
			return fmt.Errorf("retry: interrupted after attempt %d: %w", attempt, errors.Join(serr, lastErr))
		}
	}

	return &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// Backoff returns the delay after the given failed attempt (1-based):
// BaseDelay * 2^(attempt-1) with jitter applied, never above MaxDelay. A
// server-provided retry delay on err wins when it is longer.
func (p Policy) Backoff(attempt int, err error) time.Duration {
	exp := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1)) //nolint:mnd // exponential backoff formula
	if p.MaxDelay > 0 && exp > float64(p.MaxDelay) {
		exp = float64(p.MaxDelay)
	}

	delay := p.jitter(time.Duration(exp))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	var ra interface{ RetryDelay() time.Duration }
	if errors.As(err, &ra) && ra.RetryDelay() > delay {
		delay = ra.RetryDelay()
	}

	return delay
}

// jitter scales d by a random factor in [1-Jitter, 1+Jitter).
func (p Policy) jitter(d time.Duration) time.Duration {
	if p.Jitter <= 0 {
		return d
	}

	rnd := p.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	factor := 1 - p.Jitter + rnd()*2*p.Jitter //nolint:mnd // symmetric jitter range
	return time.Duration(float64(d) * factor)
}

// IsTransient is the default predicate. Connection resets, unexpected EOFs,
// timeouts and errors reporting Temporary() == true are transient; context
// cancellation and everything else is not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) {
		return temporary.Temporary()
	}

	return false
}

// contextSleep sleeps for d or until ctx is cancelled.
func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
