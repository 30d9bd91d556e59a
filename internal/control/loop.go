// Package control runs the loop that turns the latest detection result and
// the schedule into pointer actions.
package control

import (
	"context"
	"errors"
	"time"

	"iclicker-monitor/internal/action"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"
	"iclicker-monitor/internal/worker"
)

const source = "control"

// StatusSource reports where the current time falls in the timetable.
type StatusSource interface {
	Status(ctx context.Context) (schedule.Status, error)
}

// Stepper executes at most one action for a status and detection result.
type Stepper interface {
	Step(status schedule.Status, r detect.Result) action.Outcome
}

// Loop reads the shared detection cell and asks the engine to act on it.
type Loop struct {
	oracle  StatusSource
	cell    *detect.Cell
	engine  Stepper
	journal *journal.Journal

	Interval time.Duration
	Backoff  time.Duration

	status    schedule.Status
	hasStatus bool

	onStatus  func(schedule.Status)
	onOutcome func(action.Outcome)
}

// NewLoop creates a control loop.
func NewLoop(oracle StatusSource, cell *detect.Cell, engine Stepper, j *journal.Journal) *Loop {
	return &Loop{
		oracle:   oracle,
		cell:     cell,
		engine:   engine,
		journal:  j,
		Interval: 700 * time.Millisecond,
		Backoff:  2 * time.Second,
	}
}

// OnStatus sets the callback run when the schedule status changes.
func (l *Loop) OnStatus(fn func(schedule.Status)) {
	l.onStatus = fn
}

// OnOutcome sets the callback run after every step.
func (l *Loop) OnOutcome(fn func(action.Outcome)) {
	l.onOutcome = fn
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	l.journal.Info(source, "Control: loop started", "interval", l.Interval.String())
	worker.Run(ctx, worker.Options{
		Interval: l.Interval,
		Backoff:  l.Backoff,
		OnError:  l.reportError,
	}, func(ctx context.Context) error {
		_, err := l.Tick(ctx)
		return err
	})
	l.journal.Info(source, "Control: loop stopped")
}

// Tick evaluates the schedule, reads the latest detection and runs one
// engine step.
func (l *Loop) Tick(ctx context.Context) (action.Outcome, error) {
	status, err := l.oracle.Status(ctx)
	if err != nil {
		return action.Outcome{}, err
	}
	if !l.hasStatus || !status.Equal(l.status) {
		l.journal.Decision(source, "Control: "+status.String(), "status", status.Kind.String())
		l.status, l.hasStatus = status, true
		if l.onStatus != nil {
			l.onStatus(status)
		}
	}

	out := l.engine.Step(status, l.cell.Load())
	if l.onOutcome != nil {
		l.onOutcome(out)
	}
	return out, nil
}

func (l *Loop) reportError(err error) {
	var perr *worker.PanicError
	if errors.As(err, &perr) {
		l.journal.Error(source, "Control: tick panicked, backing off",
			"error", perr.Error(), "stack", string(perr.Stack), "backoff", l.Backoff.String())
		return
	}
	l.journal.Info(source, "Control: tick skipped", "error", err)
}
