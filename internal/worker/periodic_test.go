package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	done := make(chan struct{})

	go func() {
		Run(ctx, Options{Interval: time.Millisecond}, func(context.Context) error {
			if ticks.Add(1) == 3 {
				cancel()
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, int32(3), ticks.Load())
}

func TestRunSurvivesErrorsAndPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var reported []error
	var ticks atomic.Int32

	done := make(chan struct{})
	go func() {
		Run(ctx, Options{
			Interval: time.Millisecond,
			Backoff:  5 * time.Millisecond,
			OnError: func(err error) {
				mu.Lock()
				reported = append(reported, err)
				mu.Unlock()
			},
		}, func(context.Context) error {
			switch ticks.Add(1) {
			case 1:
				return errors.New("capture failed")
			case 2:
				panic("matcher exploded")
			case 3:
				cancel()
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 2)
	assert.EqualError(t, reported[0], "capture failed")

	var perr *PanicError
	require.ErrorAs(t, reported[1], &perr)
	assert.Equal(t, "matcher exploded", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestRunDoesNotStartAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	Run(ctx, Options{Interval: time.Millisecond}, func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
}
