package action

import (
	"errors"
	"fmt"
	"image"
	"time"

	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"
	"iclicker-monitor/internal/vision"
)

const source = "action"

// IconLookup resolves a course name to its icon image.
type IconLookup interface {
	IconPathFor(courseName string) (string, bool)
}

// Plan is the action chosen for one cycle.
type Plan struct {
	Action Name
	Course *schedule.Course // Course whose icon is clicked, for OpenCourse
	Reason string
}

// Decide maps the schedule status and the resolved label to at most one
// action. It has no side effects; whether the target is visible is only
// known when the plan is executed.
func Decide(status schedule.Status, r detect.Result) Plan {
	switch status.Kind {
	case schedule.InClass:
		switch r.Label {
		case detect.CourseMenu:
			return Plan{Action: OpenCourse, Course: status.Current, Reason: "in class at course menu"}
		case detect.CourseStarts:
			return Plan{Action: Join, Reason: "course started"}
		case detect.PollStarts:
			return Plan{Action: Answer, Reason: "poll started"}
		default:
			return Plan{Reason: "in class, nothing to do on " + r.Name}
		}
	case schedule.BetweenClasses:
		switch r.Label {
		case detect.LeaveSession:
			return Plan{Action: Leave, Reason: "class over, leave prompt shown"}
		case detect.CourseMenu:
			return Plan{Reason: "between classes, already at course menu"}
		default:
			return Plan{Action: Return, Reason: "between classes, heading back to course menu"}
		}
	default:
		return Plan{Reason: "no classes today"}
	}
}

// OutcomeKind says what happened to a plan.
type OutcomeKind int

const (
	OutcomeNoOp OutcomeKind = iota
	OutcomeSkipped
	OutcomeExecuted
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeExecuted:
		return "executed"
	case OutcomeFailed:
		return "failed"
	default:
		return "no-op"
	}
}

// Outcome reports the result of one engine step.
type Outcome struct {
	Kind   OutcomeKind
	Action Name
	Point  image.Point // Click position, for executed actions
	Score  float64
	Reason string
	Err    error
	At     time.Time
}

func (o Outcome) String() string {
	if o.Kind == OutcomeExecuted {
		return fmt.Sprintf("%s %s at %s", o.Kind, o.Action, o.Point)
	}
	if o.Action == None {
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	}
	return fmt.Sprintf("%s %s: %s", o.Kind, o.Action, o.Reason)
}

// Engine turns plans into at most one click per step and enforces cooldowns.
// Step is called from a single goroutine.
type Engine struct {
	catalog   *Catalog
	exec      Executor
	icons     IconLookup
	cooldowns *Cooldowns
	journal   *journal.Journal
	clock     func() time.Time

	Threshold float64

	lastNote string
}

// NewEngine creates an engine.
func NewEngine(catalog *Catalog, exec Executor, icons IconLookup, j *journal.Journal) *Engine {
	return &Engine{
		catalog:   catalog,
		exec:      exec,
		icons:     icons,
		cooldowns: NewCooldowns(),
		journal:   j,
		clock:     time.Now,
		Threshold: vision.DefaultThreshold,
	}
}

// SetClock overrides the time source used for cooldowns.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// Cooldowns exposes the cooldown tracker.
func (e *Engine) Cooldowns() *Cooldowns {
	return e.cooldowns
}

// Step decides and executes the action for one control cycle.
func (e *Engine) Step(status schedule.Status, r detect.Result) Outcome {
	now := e.clock()
	plan := Decide(status, r)
	out := e.execute(plan, now)
	out.At = now
	e.report(out)
	return out
}

func (e *Engine) execute(plan Plan, now time.Time) Outcome {
	out := Outcome{Action: plan.Action, Reason: plan.Reason}
	if plan.Action == None {
		return out
	}

	spec, err := e.catalog.Lookup(plan.Action)
	if err != nil {
		out.Kind, out.Err = OutcomeFailed, err
		return out
	}
	if rem := e.cooldowns.Remaining(spec.Name, spec.Cooldown, now); rem > 0 {
		out.Kind = OutcomeSkipped
		out.Reason = fmt.Sprintf("cooldown, %s remaining", rem.Round(100*time.Millisecond))
		return out
	}

	target := spec.Target
	if plan.Action == OpenCourse {
		if plan.Course == nil || e.icons == nil {
			out.Reason = "no active course"
			return out
		}
		path, ok := e.icons.IconPathFor(plan.Course.Name)
		if !ok {
			out.Reason = fmt.Sprintf("no icon for %q", plan.Course.Name)
			return out
		}
		target = path
	}

	match, found, err := e.find(plan.Action, target)
	switch {
	case errors.Is(err, ErrTargetMissing):
		out.Kind, out.Err = OutcomeSkipped, err
		out.Reason = "target image missing"
		return out
	case err != nil:
		out.Kind, out.Err = OutcomeFailed, err
		out.Reason = "locate failed"
		return out
	case !found:
		switch plan.Action {
		case OpenCourse:
			out.Reason = fmt.Sprintf("icon of %q not on screen", plan.Course.Name)
		case Return:
			out.Reason = "return target not visible"
		default:
			out.Kind = OutcomeSkipped
			out.Reason = plan.Action.String() + " target not visible"
		}
		return out
	}

	out.Point, out.Score = match.Center(), match.Score
	if err := e.exec.Click(out.Point); err != nil {
		out.Kind, out.Err = OutcomeFailed, err
		out.Reason = "click failed"
		return out
	}
	e.cooldowns.Mark(spec.Name, now)
	out.Kind = OutcomeExecuted
	return out
}

// find locates the click target. The return target may appear several
// times; the leftmost instance is used.
func (e *Engine) find(n Name, target string) (vision.Match, bool, error) {
	if n != Return {
		return e.exec.Locate(target, e.Threshold)
	}
	matches, err := e.exec.LocateAll(target, e.Threshold)
	if err != nil {
		return vision.Match{}, false, err
	}
	m, ok := vision.Leftmost(matches)
	return m, ok, nil
}

// report journals executed actions and failures every time, other outcomes
// only when they differ from the previous step.
func (e *Engine) report(out Outcome) {
	switch out.Kind {
	case OutcomeExecuted:
		e.lastNote = ""
		e.journal.Decision(source, "Action: "+out.String(),
			"action", out.Action.String(), "x", out.Point.X, "y", out.Point.Y,
			"score", out.Score, "reason", out.Reason)
	case OutcomeFailed:
		e.lastNote = ""
		e.journal.Error(source, "Action: "+out.String(),
			"action", out.Action.String(), "error", out.Err)
	default:
		note := out.String()
		if note == e.lastNote {
			return
		}
		e.lastNote = note
		if out.Action == None {
			return
		}
		e.journal.Info(source, "Action: "+note, "action", out.Action.String(), "error", out.Err)
	}
}
