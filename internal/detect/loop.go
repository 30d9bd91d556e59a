package detect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"iclicker-monitor/internal/capture"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/templates"
	"iclicker-monitor/internal/worker"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const source = "detect"

// Sampler produces screen snapshots.
type Sampler interface {
	Capture() (capture.Snapshot, error)
}

// Loop periodically captures, classifies, resolves and publishes the current
// interface state.
type Loop struct {
	sampler    Sampler
	lib        *templates.Library
	classifier Classifier
	cell       *Cell
	journal    *journal.Journal

	Interval time.Duration
	Backoff  time.Duration

	onChange func(prev, next Result)

	timingMu sync.Mutex
	timings  []float64 // Recent tick durations in milliseconds
}

const timingWindow = 50

// NewLoop creates a detection loop publishing into cell.
func NewLoop(sampler Sampler, lib *templates.Library, classifier Classifier, cell *Cell, j *journal.Journal) *Loop {
	return &Loop{
		sampler:    sampler,
		lib:        lib,
		classifier: classifier,
		cell:       cell,
		journal:    j,
		Interval:   300 * time.Millisecond,
		Backoff:    2 * time.Second,
	}
}

// OnChange sets the side effect run when the resolved label changes, e.g. a
// status highlight. It runs on the loop goroutine.
func (l *Loop) OnChange(fn func(prev, next Result)) {
	l.onChange = fn
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	l.journal.Info(source, "Detection: loop started",
		"interval", l.Interval.String(), "templates", l.lib.Summary())
	worker.Run(ctx, worker.Options{
		Interval: l.Interval,
		Backoff:  l.Backoff,
		OnError:  l.reportError,
	}, func(context.Context) error {
		_, err := l.Tick()
		return err
	})
	l.journal.Info(source, "Detection: loop stopped")
}

// Tick runs one capture, classify, resolve and publish pass.
func (l *Loop) Tick() (Result, error) {
	start := time.Now()
	snap, err := l.sampler.Capture()
	if err != nil {
		return Result{}, err
	}
	defer snap.Close()
	defer l.recordTiming(start)

	result := NewResult(l.classifier.Classify(snap.Image, l.lib), snap.At)
	prev, changed := l.cell.Store(result)
	if changed {
		l.journal.Decision(source, fmt.Sprintf("Detection: %s -> %s", prev.Name, result.Name),
			"from", prev.Name, "to", result.Name, "candidates", result.Candidates)
		if l.onChange != nil {
			l.onChange(prev, result)
		}
	}
	return result, nil
}

func (l *Loop) reportError(err error) {
	if perr, ok := err.(*worker.PanicError); ok {
		l.journal.Error(source, "Detection: tick panicked, backing off",
			"error", perr.Error(), "stack", string(perr.Stack), "backoff", l.Backoff.String())
		return
	}
	l.journal.Info(source, "Detection: tick skipped", "error", err)
}

func (l *Loop) recordTiming(start time.Time) {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	l.timingMu.Lock()
	l.timings = append(l.timings, ms)
	if len(l.timings) > timingWindow {
		l.timings = l.timings[len(l.timings)-timingWindow:]
	}
	l.timingMu.Unlock()
}

// Timing returns the mean and worst duration of the recent ticks.
func (l *Loop) Timing() (mean, worst time.Duration) {
	l.timingMu.Lock()
	defer l.timingMu.Unlock()
	if len(l.timings) == 0 {
		return 0, 0
	}
	mean = time.Duration(stat.Mean(l.timings, nil) * float64(time.Millisecond))
	worst = time.Duration(floats.Max(l.timings) * float64(time.Millisecond))
	return mean, worst
}
