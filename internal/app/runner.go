package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"iclicker-monitor/internal/journal"
)

const source = "app"

var (
	// ErrRunning is returned by Start when the loops already run.
	ErrRunning = errors.New("app: already running")
	// ErrStopTimeout is returned by Stop when a loop did not exit in time.
	ErrStopTimeout = errors.New("app: loops did not stop in time")
	// ErrStopping is returned by Start while loops from a timed-out Stop
	// are still finishing.
	ErrStopping = errors.New("app: previous loops still stopping")
)

// Loop is a background loop that runs until its context is cancelled.
type Loop interface {
	Run(ctx context.Context)
}

// LoopFunc adapts a function to Loop.
type LoopFunc func(ctx context.Context)

func (f LoopFunc) Run(ctx context.Context) { f(ctx) }

// Runner owns the detection and control loops plus any helpers that live as
// long as detection (template watcher, hotkey listener). Each loop gets its
// own context so the control loop can be stopped alone.
type Runner struct {
	detection Loop
	control   Loop
	helpers   []Loop
	state     *State
	journal   *journal.Journal

	StopTimeout time.Duration

	mu            sync.Mutex
	running       bool
	cancelDetect  context.CancelFunc
	cancelControl context.CancelFunc
	wg            sync.WaitGroup
	drained       chan struct{} // closed once the last stopped loops exited
}

// NewRunner creates a runner. helpers are started and stopped with the
// detection loop.
func NewRunner(detection, control Loop, state *State, j *journal.Journal, helpers ...Loop) *Runner {
	return &Runner{
		detection:   detection,
		control:     control,
		helpers:     helpers,
		state:       state,
		journal:     j,
		StopTimeout: 5 * time.Second,
	}
}

// Running reports whether the loops have been started and not stopped.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches both loops. The loops stop when parent is cancelled or
// Stop is called.
func (r *Runner) Start(parent context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrRunning
	}
	if r.drained != nil {
		select {
		case <-r.drained:
			r.drained = nil
		default:
			return ErrStopping
		}
	}

	detectCtx, cancelDetect := context.WithCancel(parent)
	controlCtx, cancelControl := context.WithCancel(detectCtx)
	r.cancelDetect, r.cancelControl = cancelDetect, cancelControl
	r.running = true

	r.spawn(detectCtx, r.detection)
	r.spawn(controlCtx, r.control)
	for _, h := range r.helpers {
		r.spawn(detectCtx, h)
	}

	r.journal.Info(source, "Runner: started")
	r.state.SetRunning(true, true)
	return nil
}

func (r *Runner) spawn(ctx context.Context, l Loop) {
	if l == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		l.Run(ctx)
	}()
}

// EmergencyStop cancels the control loop so no further pointer action is
// taken. Detection keeps running for the status display. Safe to call from
// any goroutine, any number of times.
func (r *Runner) EmergencyStop() {
	r.mu.Lock()
	cancel := r.cancelControl
	running := r.running
	r.mu.Unlock()
	if !running || cancel == nil {
		return
	}
	cancel()
	r.journal.Decision(source, "Runner: emergency stop, control loop cancelled")
	r.state.SetRunning(true, false)
}

// Stop cancels both loops and waits up to StopTimeout for them to finish
// their in-flight ticks.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.cancelControl()
	r.cancelDetect()
	done := make(chan struct{})
	r.drained = done
	r.mu.Unlock()

	go func() {
		r.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		r.journal.Info(source, "Runner: stopped")
	case <-time.After(r.StopTimeout):
		err = ErrStopTimeout
		r.journal.Error(source, "Runner: loops still running after stop", "timeout", r.StopTimeout.String())
	}
	r.state.SetRunning(false, false)
	return err
}
