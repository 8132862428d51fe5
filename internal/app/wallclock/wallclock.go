// Package wallclock provides timers driven by wall-clock time rather than
// the monotonic clock. Long-running schedules drift when the host sleeps
// or the monotonic clock runs fast or slow, so durations are measured
// against the wall clock instead.
package wallclock

import (
	"context"
	"time"
)

// After runs callback once duration has elapsed on the wall clock and
// returns a cancel function. The clock is polled, so firing resolution is
// around 100ms.
func After(duration time.Duration, callback func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		endTime := Strip(time.Now()).Add(duration)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if Strip(time.Now()).After(endTime) {
					callback()
					return
				}
			}
		}
	}()

	return cancel
}

// Now returns the current time with its monotonic reading dropped.
func Now() time.Time {
	return Strip(time.Now())
}

// Strip returns the time with its monotonic reading dropped, so that
// differences are computed on the wall clock.
func Strip(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
