package core

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Sleeper abstracts time.Sleep for deterministic tests.
type Sleeper interface {
	Sleep(time.Duration)
}

// FuncSleeper wraps a function to satisfy Sleeper.
type FuncSleeper func(time.Duration)

// Sleep implements the Sleeper interface.
func (f FuncSleeper) Sleep(d time.Duration) { f(d) }

// BackoffStrategy holds retry parameters for the read-diff-patch cycle.
type BackoffStrategy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	Jitter      float64
	Sleeper     Sleeper
	Rand        func() float64
}

// DefaultBackoff returns the patcher's default retry configuration: three
// attempts with short exponential backoff.
func DefaultBackoff() BackoffStrategy {
	return BackoffStrategy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		MaxAttempts: 3,
		Jitter:      0.2,
	}
}

// Retry executes fn with exponential backoff until fn returns nil, shouldRetry
// returns false, the context expires, or MaxAttempts have been exhausted. It
// returns the number of attempts executed and the last error from fn, if any.
// A context expiry surfaces as the context's error so callers can map it to a
// timeout failure.
func (b BackoffStrategy) Retry(ctx context.Context, fn func() error, shouldRetry func(error) bool) (int, error) {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 1
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = 100 * time.Millisecond
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = time.Second
	}
	sleeper := b.Sleeper
	if sleeper == nil {
		sleeper = FuncSleeper(time.Sleep)
	}
	rnd := b.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}
		err := fn()
		if err == nil {
			return attempt, nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return attempt, err
		}
		if attempt == b.MaxAttempts {
			return attempt, err
		}
		delay := b.nextDelay(attempt)
		if b.Jitter > 0 {
			jitter := float64(delay) * b.Jitter * rnd()
			delay += time.Duration(jitter)
		}
		sleeper.Sleep(delay)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}
	}
	return b.MaxAttempts, nil
}

func (b BackoffStrategy) nextDelay(attempt int) time.Duration {
	exp := float64(attempt - 1)
	delay := float64(b.BaseDelay) * math.Pow(2, exp)
	max := float64(b.MaxDelay)
	if delay > max {
		delay = max
	}
	return time.Duration(delay)
}
