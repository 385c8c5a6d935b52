package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Every dispatched event is stamped
// with a strictly increasing seq before it reaches the journal, so the
// recorded event order is explicit and independent of wall time.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// store's single-writer design means one goroutine typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when resuming on top of an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
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
