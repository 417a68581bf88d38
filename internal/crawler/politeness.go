package crawler

import (
	"context"
	"time"
)

// PauseController abstracts how the crawler waits between requests.
type PauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauseController sleeps on a timer and wakes early when ctx ends.
type TimerPauseController struct{}

// Pause blocks for delay or until ctx is done.
func (TimerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
