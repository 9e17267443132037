package movement

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"k8s.io/utils/clock"
)

// Backoff decides how long to wait before the next permission request.
type Backoff interface {
	// Next returns the wait after the attempt-th refusal, counting from 1.
	Next(attempt int) time.Duration
}

// Constant waits the same interval after every refusal.
type Constant struct {
	Interval time.Duration
}

func (b Constant) Next(int) time.Duration {
	return b.Interval
}

// Exponential doubles (by Multiplier) from Initial up to Max. Jitter in [0,1)
// spreads each wait by up to that fraction in either direction.
type Exponential struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

func (b Exponential) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 2
	}

	d := float64(b.Initial)
	for i := 1; i < attempt; i++ {
		d *= mult
		if b.Max > 0 && d >= float64(b.Max) {
			d = float64(b.Max)
			break
		}
	}

	if b.Jitter > 0 {
		d += d * b.Jitter * (2*rand.Float64() - 1)
	}
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	return time.Duration(d)
}

// Backoff policy names accepted by NewBackoff.
const (
	PolicyConstant    = "constant"
	PolicyExponential = "exponential"
)

// NewBackoff builds a policy by name.
func NewBackoff(policy string, interval, maxInterval time.Duration) (Backoff, error) {
	switch policy {
	case "", PolicyConstant:
		return Constant{Interval: interval}, nil
	case PolicyExponential:
		return Exponential{Initial: interval, Max: maxInterval, Multiplier: 2, Jitter: 0.1}, nil
	default:
		return nil, fmt.Errorf("unknown backoff policy %q", policy)
	}
}

// Sleep waits d on clk. It returns ctx.Err() if ctx ends first.
func Sleep(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := clk.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}
