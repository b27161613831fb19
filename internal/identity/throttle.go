package identity

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// throttled spaces provider calls so a long sync stays under the
// provider's API rate limit.
type throttled struct {
	Provider
	limiter *rate.Limiter
}

// Throttle wraps p so calls run at most rps times per second. A
// non-positive rps disables throttling.
func Throttle(p Provider, rps float64) Provider {
	if rps <= 0 {
		return p
	}
	burst := int(math.Max(1, math.Ceil(rps)))
	return &throttled{Provider: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *throttled) ListUsers(ctx context.Context, cursor string, limit int) (Page, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}
	return t.Provider.ListUsers(ctx, cursor, limit)
}
