package identity

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Backoff between attempts of one page request: 250ms, 1s, then 4s for
// every later attempt.
var retryDelays = []time.Duration{
	250 * time.Millisecond,
	1 * time.Second,
	4 * time.Second,
}

const (
	// DefaultMaxAttempts is the number of tries per page, first included.
	DefaultMaxAttempts = 3

	// jitterFactor is the ±share of jitter applied to delays.
	jitterFactor = 0.2
)

// NextRetryDelay returns the jittered delay after the given failed
// attempt. attempt is 0-indexed.
func NextRetryDelay(attempt int) time.Duration {
	attempt = max(0, min(attempt, len(retryDelays)-1))
	base := float64(retryDelays[attempt])
	jitter := (rand.Float64()*2 - 1) * base * jitterFactor
	return time.Duration(base + jitter)
}

// retrying repeats failed ListUsers calls. Errors that another try cannot
// fix are returned at once.
type retrying struct {
	Provider
	attempts int
	sleep    func(ctx context.Context, d time.Duration) error
}

// Retry wraps p so each page request is tried up to attempts times.
// attempts below 2 returns p unchanged.
func Retry(p Provider, attempts int) Provider {
	if attempts < 2 {
		return p
	}
	return &retrying{Provider: p, attempts: attempts, sleep: sleepContext}
}

func (r *retrying) ListUsers(ctx context.Context, cursor string, limit int) (Page, error) {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		var page Page
		page, err = r.Provider.ListUsers(ctx, cursor, limit)
		if err == nil || !retryable(err) {
			return page, err
		}
		if attempt == r.attempts-1 {
			break
		}
		if serr := r.sleep(ctx, NextRetryDelay(attempt)); serr != nil {
			return Page{}, serr
		}
	}
	return Page{}, err
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNotConfigured),
		errors.Is(err, ErrBadCursor),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
