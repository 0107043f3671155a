package llm

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackOff waits Step, 2*Step, 3*Step ... capped at Max (0 = no cap).
// It never stops on its own; wrap it with backoff.WithMaxRetries.
type LinearBackOff struct {
	Step time.Duration
	Max  time.Duration

	n int
}

var _ backoff.BackOff = (*LinearBackOff)(nil)

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	d := time.Duration(b.n) * b.Step
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

func (b *LinearBackOff) Reset() { b.n = 0 }

// RetryPolicy is the per-endpoint retry budget for rate-limited calls.
type RetryPolicy struct {
	MaxAttempts int
	Step        time.Duration
	Max         time.Duration
}

// BackOff builds a fresh schedule allowing MaxAttempts tries in total.
func (p RetryPolicy) BackOff() backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(&LinearBackOff{Step: p.Step, Max: p.Max}, uint64(attempts-1))
}
