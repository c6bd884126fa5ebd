package sim

import (
	"sync"
	"time"
)

// Clock abstracts time so simulated delays can run against a fake in tests.
// Production code uses WallClock; drivers hold the full seek+transfer delay
// of one request on Sleep.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// WallClock is the production clock backed by real time.
type WallClock struct{}

func (WallClock) Now() time.Time        { return time.Now() }
func (WallClock) Sleep(d time.Duration) { time.Sleep(d) }

// FakeClock is a virtual clock for tests. Sleep advances virtual time
// immediately instead of blocking, so simulated transfers finish instantly
// while timestamps still move forward consistently.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves virtual time forward by d. Negative durations are ignored.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
