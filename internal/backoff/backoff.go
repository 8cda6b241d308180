// Package backoff wraps cenkalti/backoff/v4 with two profiles: a poll
// cadence that relaxes from a fast floor up to an idle ceiling when batches
// come up empty, and a write-retry cadence capped higher for transient
// write failures. The reconciler and GitOps worker loops use only Poll,
// also for the next attempt after a failed batch; neither calls WriteRetry.
package backoff

import (
	"time"

	cenkalti "github.com/cenkalti/backoff/v4"
)

// Poll returns the consumer poll backoff: starts at 100ms, doubles up to a
// 5s ceiling, and never gives up (MaxElapsedTime 0).
func Poll() cenkalti.BackOff {
	b := cenkalti.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	return b
}

// WriteRetry returns a backoff profile for transient write failures:
// starts at 250ms, doubles up to a 30s ceiling.
func WriteRetry() cenkalti.BackOff {
	b := cenkalti.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0
	return b
}
