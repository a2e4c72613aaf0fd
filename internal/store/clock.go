package store

import "sync/atomic"

// Clock is a monotonic logical clock for audit ordering.
//
// Every committed mutation is stamped with a strictly increasing seq from
// this clock, so entry order never depends on wall-clock resolution.
//
// Thread-safety: safe for concurrent use (atomic operations). In practice
// the store calls Next() while holding its lock, which is what makes seq
// order and append order coincide.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
