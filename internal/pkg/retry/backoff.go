package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff returns the delay before the given attempt. Attempts start at 1.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt and adds up to JitterFactor of random delay.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

func (b *ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.InitialInterval) * math.Pow(b.Multiplier, float64(attempt-1))
	if b.JitterFactor > 0 {
		delay += rand.Float64() * b.JitterFactor * delay
	}
	if b.MaxInterval > 0 && delay > float64(b.MaxInterval) {
		delay = float64(b.MaxInterval)
	}
	return time.Duration(delay)
}

// DefaultBackoff is used for evidence uploads and outbox redelivery.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
		JitterFactor:    0.2,
	}
}
