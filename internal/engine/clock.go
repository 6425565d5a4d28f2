package engine

import "sync/atomic"

// Clock is a monotonic logical clock for statement ordering.
//
// Every accepted statement is stamped with a strictly increasing seq from
// this clock. This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - Replay produces identical order
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the Aggregator's single-writer design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used for replay to resume from last known position.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// advanceTo moves the clock forward to seq if it is behind.
func (c *Clock) advanceTo(seq int64) {
	for {
		cur := c.seq.Load()
		if cur >= seq || c.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}
