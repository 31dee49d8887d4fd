// Package retry runs an operation a fixed number of times with a fixed delay.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fixed calls fn up to attempts times, sleeping delay between failed attempts.
// It stops early when fn succeeds or ctx is done. After the last attempt it
// returns fn's error without sleeping; a cancelled wait returns ctx.Err().
func Fixed(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
	return backoff.Retry(func() error { return fn(ctx) }, b)
}
