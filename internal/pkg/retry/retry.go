package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/uspizza/loyalty-cli/internal/config"
)

// Do runs fn up to policy.Attempts times with exponential backoff and
// jitter. It is meant for idempotent reads only; callers that must not
// retry (the receipt fetch) simply do not go through here.
func Do(ctx context.Context, policy config.Retry, fn func() error) error {
	if policy.Attempts <= 0 {
		return fn()
	}

	d := policy.Base
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == policy.Attempts-1 {
			break
		}

		delay := d
		if policy.JitterFactor > 0 {
			jitter := 1 + policy.JitterFactor*(2*r.Float64()-1)
			delay = time.Duration(float64(delay) * jitter)
		}
		if policy.Max > 0 && delay > policy.Max {
			delay = policy.Max
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		d *= 2
		if policy.Max > 0 && d > policy.Max {
			d = policy.Max
		}
	}
	return err
}
