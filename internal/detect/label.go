// Package detect classifies screen captures into named interface states and
// runs the detection loop that publishes the current state.
package detect

import "strings"

// Label is the closed set of interface states the decision logic knows about.
// Template directories with other names still classify, as Other.
type Label int

const (
	Unmatched Label = iota
	CourseMenu
	CourseNotStarted
	CourseStarts
	PollStarts
	PollAnswered
	SendAnswer
	LeaveSession
	Other
)

// UnmatchedName is the resolved name when no label matched.
const UnmatchedName = "unmatched"

var labelNames = [...]string{
	Unmatched:        UnmatchedName,
	CourseMenu:       "course_menu",
	CourseNotStarted: "course_not_started",
	CourseStarts:     "course_starts",
	PollStarts:       "poll_starts",
	PollAnswered:     "poll_answered",
	SendAnswer:       "send_answer",
	LeaveSession:     "leave_session",
	Other:            "other",
}

func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return "invalid"
	}
	return labelNames[l]
}

// ParseLabel maps a template directory name to its label.
func ParseLabel(name string) Label {
	for l, n := range labelNames {
		if n == name && Label(l) != Other {
			return Label(l)
		}
	}
	return Other
}

// IsSpecial reports whether name is one of the labels with resolver priority
// over all others.
func IsSpecial(name string) bool {
	return name == CourseStarts.String() || name == CourseNotStarted.String()
}

// DisplayName turns a label name into title case words,
// e.g. "course_not_started" becomes "Course Not Started".
func DisplayName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
