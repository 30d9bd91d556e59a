package control

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iclicker-monitor/internal/action"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus struct {
	mu     sync.Mutex
	status schedule.Status
	err    error
}

func (f *fixedStatus) set(s schedule.Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

func (f *fixedStatus) Status(context.Context) (schedule.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.err
}

type recordingStepper struct {
	mu      sync.Mutex
	seen    []detect.Result
	panicky bool
}

func (r *recordingStepper) Step(status schedule.Status, res detect.Result) action.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panicky {
		panic("boom")
	}
	r.seen = append(r.seen, res)
	return action.Outcome{Kind: action.OutcomeNoOp, Reason: status.String()}
}

func (r *recordingStepper) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestTickReadsLatestResult(t *testing.T) {
	cell := detect.NewCell()
	cell.Store(detect.Result{Name: "poll_starts", Label: detect.PollStarts})
	stepper := &recordingStepper{}
	oracle := &fixedStatus{status: schedule.Status{Kind: schedule.NoClasses}}
	l := NewLoop(oracle, cell, stepper, journal.New(&bytes.Buffer{}, nil))

	var outcomes []action.Outcome
	l.OnOutcome(func(o action.Outcome) { outcomes = append(outcomes, o) })

	_, err := l.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, stepper.seen, 1)
	assert.Equal(t, detect.PollStarts, stepper.seen[0].Label)
	assert.Len(t, outcomes, 1)
}

func TestTickJournalsStatusTransitionsOnce(t *testing.T) {
	j := journal.New(&bytes.Buffer{}, nil)
	oracle := &fixedStatus{status: schedule.Status{Kind: schedule.NoClasses}}
	l := NewLoop(oracle, detect.NewCell(), &recordingStepper{}, j)

	var statuses []schedule.Kind
	l.OnStatus(func(s schedule.Status) { statuses = append(statuses, s.Kind) })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := l.Tick(ctx)
		require.NoError(t, err)
	}
	c := schedule.Course{ID: 1, Start: "09:00", End: "10:00", Name: "Algebra"}
	oracle.set(schedule.Status{Kind: schedule.InClass, Current: &c})
	_, err := l.Tick(ctx)
	require.NoError(t, err)

	assert.Equal(t, []schedule.Kind{schedule.NoClasses, schedule.InClass}, statuses)
	assert.Len(t, j.Recent(0), 2)
}

func TestTickStatusErrorSkipsStep(t *testing.T) {
	stepper := &recordingStepper{}
	oracle := &fixedStatus{err: errors.New("database is locked")}
	l := NewLoop(oracle, detect.NewCell(), stepper, journal.New(&bytes.Buffer{}, nil))

	_, err := l.Tick(context.Background())
	assert.Error(t, err)
	assert.Zero(t, stepper.count())
}

func TestRunSurvivesPanicsAndStopsOnCancel(t *testing.T) {
	j := journal.New(&bytes.Buffer{}, nil)
	stepper := &recordingStepper{panicky: true}
	oracle := &fixedStatus{status: schedule.Status{Kind: schedule.NoClasses}}
	l := NewLoop(oracle, detect.NewCell(), stepper, j)
	l.Interval = time.Millisecond
	l.Backoff = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		for _, e := range j.Recent(0) {
			if e.Category == journal.CategoryError {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}
