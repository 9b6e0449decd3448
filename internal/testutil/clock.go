package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe clock for tests. Every call to Now
// advances it by one second from a fixed epoch, so stored timestamps are
// stable across runs.
type DeterministicClock struct {
	mu    sync.Mutex
	epoch time.Time
	ticks int64
}

// ClockEpoch is the first instant returned by a new DeterministicClock.
var ClockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDeterministicClock creates a clock starting at ClockEpoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{epoch: ClockEpoch}
}

// Now returns the next instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.epoch.Add(time.Duration(c.ticks) * time.Second)
	c.ticks++
	return t
}

// Reset rewinds the clock to its epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
