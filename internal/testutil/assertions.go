package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// NewSighting returns a valid sighting reported at now.
func NewSighting(now time.Time) types.Sighting {
	return types.Sighting{
		Type:        types.SightingParkingEnforcer,
		Location:    "123 Main St, Milwaukee",
		Latitude:    43.0389,
		Longitude:   -87.9065,
		Notes:       "Test sighting for notification system",
		ReportedAt:  types.FormatReportedAt(now),
		Occurrences: 1,
		ExpiresAt:   now.Add(types.SightingTTL),
		Status:      types.SightingActive,
	}
}

// FakeClock is a clock that moves only when Sleep is called.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeClock returns a clock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep records d and advances the clock. It never blocks.
func (c *FakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// Sleeps returns the recorded sleep durations.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
