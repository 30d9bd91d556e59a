// Package worker runs the fixed-cadence background loops.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// PanicError wraps a panic recovered at a tick boundary.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("tick panicked: %v", e.Value)
}

// Options configures a periodic loop.
type Options struct {
	Interval time.Duration // Pause between ticks
	Backoff  time.Duration // Pause after a panicking tick
	OnError  func(error)   // Receives tick errors and recovered panics
}

// Run calls tick every Interval until ctx is cancelled. Cancellation is
// observed at the top of each tick and while waiting; an in-flight tick is
// never interrupted. A tick error is reported and the loop continues; a
// panicking tick is recovered, reported as *PanicError and followed by
// Backoff instead of Interval.
func Run(ctx context.Context, opts Options, tick func(context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wait := opts.Interval
		if err := safeTick(ctx, tick); err != nil {
			if opts.OnError != nil {
				opts.OnError(err)
			}
			if _, ok := err.(*PanicError); ok && opts.Backoff > 0 {
				wait = opts.Backoff
			}
		}

		if !sleep(ctx, wait) {
			return
		}
	}
}

func safeTick(ctx context.Context, tick func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return tick(ctx)
}

// sleep waits for d or cancellation and reports whether the loop should go on.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
