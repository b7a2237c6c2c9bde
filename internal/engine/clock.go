package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current time in seconds. It is read once per operation.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current Unix time in seconds.
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// MonotonicClock wraps a Clock so readings never go backwards, even if
// the underlying source is adjusted.
//
// Thread-safety: MonotonicClock is safe for concurrent use.
type MonotonicClock struct {
	src  Clock
	last atomic.Int64
}

// NewMonotonicClock wraps src.
func NewMonotonicClock(src Clock) *MonotonicClock {
	return &MonotonicClock{src: src}
}

// Now returns max(src.Now(), previous reading).
func (c *MonotonicClock) Now() int64 {
	now := c.src.Now()
	for {
		last := c.last.Load()
		if now <= last {
			return last
		}
		if c.last.CompareAndSwap(last, now) {
			return now
		}
	}
}
