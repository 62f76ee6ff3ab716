package engine

import (
	"context"
	"time"
)

// TickerWaiter sleeps with a countdown callback every Interval.
type TickerWaiter struct {
	Interval time.Duration
}

// NewTickerWaiter returns a waiter that ticks once per second.
func NewTickerWaiter() TickerWaiter {
	return TickerWaiter{Interval: time.Second}
}

// Wait blocks for d or until ctx is done.
func (w TickerWaiter) Wait(ctx context.Context, d time.Duration, tick func(remaining time.Duration)) error {
	if d <= 0 {
		return ctx.Err()
	}

	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}

	deadline := time.Now().Add(d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if tick != nil {
		tick(d)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-ticker.C:
			if tick != nil {
				tick(max(time.Until(deadline), 0))
			}
		}
	}
}
