package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant handed out by DeterministicClock.
var Epoch = time.Date(2020, 5, 14, 12, 0, 0, 0, time.UTC)

// TimestampLayout is the layout keepsake writes for created timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// DeterministicClock hands out created timestamps one minute apart,
// starting at Epoch.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a new deterministic clock starting at 0.
//
// The first call to Next() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next returns the next instant and advances the clock.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.seq) * time.Minute)
	c.seq++
	return t
}

// NextTimestamp returns Next formatted with TimestampLayout.
func (c *DeterministicClock) NextTimestamp() string {
	return c.Next().Format(TimestampLayout)
}

// Reset rewinds the clock so the next call returns Epoch again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
