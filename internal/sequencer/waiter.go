package sequencer

import (
	"context"
	"time"
)

// TimerWaiter blocks with a runtime timer. It suspends only the calling
// goroutine and returns ctx.Err() if ctx is done before d elapses.
type TimerWaiter struct{}

// Wait blocks for d.
func (TimerWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
