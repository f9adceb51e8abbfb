// Package poll re-runs a check with capped exponential backoff until it
// succeeds, the attempt budget runs out, or the overall timeout passes.
package poll

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// ErrExhausted is returned by Until when the check never reported done.
var ErrExhausted = errors.New("poll attempts exhausted")

// Policy configures backoff between attempts.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     int
	Timeout         time.Duration
}

// DefaultPolicy returns the default polling configuration.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		MaxAttempts:     8,
		Timeout:         30 * time.Second,
	}
}

// FromConfig builds a Policy from YAML settings, keeping defaults for unset
// or unparsable fields. The bool is false when polling is disabled.
func FromConfig(cfg *types.PollConfig) (Policy, bool) {
	p := DefaultPolicy()
	if cfg == nil || !cfg.Enabled {
		return p, false
	}
	if d, err := time.ParseDuration(cfg.InitialInterval); err == nil && d > 0 {
		p.InitialInterval = d
	}
	if d, err := time.ParseDuration(cfg.MaxInterval); err == nil && d > 0 {
		p.MaxInterval = d
	}
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		p.Timeout = d
	}
	if cfg.Multiplier > 0 {
		p.Multiplier = cfg.Multiplier
	}
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	return p, true
}

// CalculateBackoff returns the wait after a given attempt number.
// Uses exponential backoff: initial * multiplier^(attempt-1), capped at MaxInterval.
func CalculateBackoff(policy Policy, attempt int) time.Duration {
	if attempt <= 1 {
		return capInterval(policy, policy.InitialInterval)
	}
	multiplier := policy.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	backoff := float64(policy.InitialInterval) * math.Pow(multiplier, float64(attempt-1))
	if backoff > math.MaxInt64 {
		backoff = math.MaxInt64
	}
	return capInterval(policy, time.Duration(backoff))
}

func capInterval(policy Policy, d time.Duration) time.Duration {
	if policy.MaxInterval > 0 && d > policy.MaxInterval {
		return policy.MaxInterval
	}
	return d
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d, returning ctx.Err() if the context ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poller runs checks under a Policy.
type Poller struct {
	policy Policy
	now    func() time.Time
	sleep  SleepFunc
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock and sleep (useful for testing).
func WithClock(now func() time.Time, sleep SleepFunc) Option {
	return func(p *Poller) {
		p.now = now
		p.sleep = sleep
	}
}

// New creates a Poller.
func New(policy Policy, opts ...Option) *Poller {
	p := &Poller{policy: policy, now: time.Now, sleep: Sleep}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Until calls check until it reports done. The first attempt runs
// immediately. It returns the number of attempts made, ErrExhausted when
// the budget runs out, or the first error from check or sleep.
func (p *Poller) Until(ctx context.Context, check func(ctx context.Context) (bool, error)) (int, error) {
	start := p.now()
	maxAttempts := p.policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		done, err := check(ctx)
		if err != nil {
			return attempt, err
		}
		if done {
			return attempt, nil
		}
		if attempt >= maxAttempts {
			return attempt, ErrExhausted
		}

		wait := CalculateBackoff(p.policy, attempt)
		if p.policy.Timeout > 0 && p.now().Add(wait).Sub(start) > p.policy.Timeout {
			return attempt, ErrExhausted
		}
		if err := p.sleep(ctx, wait); err != nil {
			return attempt, err
		}
	}
}
