package schedule

import (
	"context"
	"fmt"
	"time"
)

// Kind is the coarse position of the current time in the day's timetable.
type Kind int

const (
	NoClasses Kind = iota
	BetweenClasses
	InClass
)

func (k Kind) String() string {
	switch k {
	case InClass:
		return "in_class"
	case BetweenClasses:
		return "between_classes"
	default:
		return "no_classes"
	}
}

// Status is InClass(Current), BetweenClasses(Last, Next) or NoClasses.
// Last and Next are optional and only meaningful between classes.
type Status struct {
	Kind    Kind
	Current *Course
	Last    *Course
	Next    *Course
}

// Equal reports whether two statuses describe the same situation.
func (s Status) Equal(o Status) bool {
	return s.Kind == o.Kind && sameCourse(s.Current, o.Current) &&
		sameCourse(s.Last, o.Last) && sameCourse(s.Next, o.Next)
}

func sameCourse(a, b *Course) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Start == b.Start && a.End == b.End && a.Name == b.Name
}

func (s Status) String() string {
	switch s.Kind {
	case InClass:
		return fmt.Sprintf("in class: %s (%s-%s)", s.Current.Name, s.Current.Start, s.Current.End)
	case BetweenClasses:
		last, next := "none", "none"
		if s.Last != nil {
			last = s.Last.Name + " ended " + s.Last.End
		}
		if s.Next != nil {
			next = s.Next.Name + " at " + s.Next.Start
		}
		return fmt.Sprintf("between classes (last: %s, next: %s)", last, next)
	default:
		return "no classes today"
	}
}

// StatusAt classifies now against the day's courses. A course is in progress
// when start <= HH:MM(now) <= end. Otherwise Last is the course with the
// greatest end strictly before now and Next the course with the smallest
// start strictly after now.
func StatusAt(now time.Time, courses []Course) Status {
	if len(courses) == 0 {
		return Status{Kind: NoClasses}
	}

	clock := Clock(now)
	for i := range courses {
		c := courses[i]
		if c.Start <= clock && clock <= c.End {
			return Status{Kind: InClass, Current: &c}
		}
	}

	status := Status{Kind: BetweenClasses}
	for i := range courses {
		c := courses[i]
		if c.End < clock && (status.Last == nil || c.End > status.Last.End) {
			status.Last = &c
		}
		if c.Start > clock && (status.Next == nil || c.Start < status.Next.Start) {
			status.Next = &c
		}
	}
	return status
}

// CourseSource lists the courses of a weekday.
type CourseSource interface {
	CoursesForDay(ctx context.Context, day Weekday) ([]Course, error)
}

// Oracle computes the schedule status from a live course source. Courses are
// fetched on every call since they may be edited between cycles.
type Oracle struct {
	source CourseSource
	clock  func() time.Time
}

// NewOracle creates an oracle reading from source.
func NewOracle(source CourseSource) *Oracle {
	return &Oracle{source: source, clock: time.Now}
}

// SetClock overrides the time source.
func (o *Oracle) SetClock(clock func() time.Time) {
	o.clock = clock
}

// Now returns the oracle's current time.
func (o *Oracle) Now() time.Time {
	return o.clock()
}

// Status returns the status for the current time.
func (o *Oracle) Status(ctx context.Context) (Status, error) {
	return o.StatusAt(ctx, o.clock())
}

// StatusAt returns the status for now using the courses of now's weekday.
func (o *Oracle) StatusAt(ctx context.Context, now time.Time) (Status, error) {
	courses, err := o.source.CoursesForDay(ctx, WeekdayOf(now))
	if err != nil {
		return Status{Kind: NoClasses}, fmt.Errorf("failed to load today's courses: %w", err)
	}
	return StatusAt(now, courses), nil
}
