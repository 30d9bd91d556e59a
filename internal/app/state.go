// Package app wires the monitor together: the status surface shown to the
// user and the runner that starts and stops the loops.
package app

import (
	"sync"

	"iclicker-monitor/internal/action"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"
)

// State is the status surface: what the monitor currently sees, where the
// day stands and what it last did. It is for display only; nothing in the
// decision path reads it back.
type State struct {
	mu sync.RWMutex

	Label      detect.Result
	Schedule   schedule.Status
	LastAction action.Outcome
	Running    bool // Both loops started
	Control    bool // Control loop active, false after an emergency stop

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different status events.
type EventType int

const (
	EventLabelChanged EventType = iota
	EventScheduleChanged
	EventActionTaken
	EventRunningChanged
	EventJournal
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an idle state.
func NewState() *State {
	return &State{
		Label:     detect.Result{Name: detect.UnmatchedName},
		Schedule:  schedule.Status{Kind: schedule.NoClasses},
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	Label      detect.Result
	Schedule   schedule.Status
	LastAction action.Outcome
	Running    bool
	Control    bool
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Label:      s.Label,
		Schedule:   s.Schedule,
		LastAction: s.LastAction,
		Running:    s.Running,
		Control:    s.Control,
	}
}

// SetLabel records a new resolved label.
func (s *State) SetLabel(r detect.Result) {
	s.mu.Lock()
	s.Label = r
	s.mu.Unlock()
	s.Emit(EventLabelChanged, r)
}

// SetSchedule records a schedule status change.
func (s *State) SetSchedule(st schedule.Status) {
	s.mu.Lock()
	s.Schedule = st
	s.mu.Unlock()
	s.Emit(EventScheduleChanged, st)
}

// SetOutcome records an engine outcome. Plain no-ops are not actions and
// leave the last action unchanged.
func (s *State) SetOutcome(o action.Outcome) {
	if o.Kind == action.OutcomeNoOp {
		return
	}
	s.mu.Lock()
	changed := s.LastAction.Kind != o.Kind || s.LastAction.Action != o.Action ||
		s.LastAction.Reason != o.Reason || o.Kind == action.OutcomeExecuted
	s.LastAction = o
	s.mu.Unlock()
	if changed {
		s.Emit(EventActionTaken, o)
	}
}

// SetRunning records the loop lifecycle.
func (s *State) SetRunning(running, control bool) {
	s.mu.Lock()
	s.Running, s.Control = running, control
	s.mu.Unlock()
	s.Emit(EventRunningChanged, running)
}

// Follow forwards journal entries as EventJournal events.
func (s *State) Follow(j *journal.Journal) {
	j.Subscribe(func(e journal.Entry) {
		s.Emit(EventJournal, e)
	})
}
