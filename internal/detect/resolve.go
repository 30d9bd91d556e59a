package detect

import "sort"

// Resolve picks a single label name from a candidate set. Rules, first match
// wins:
//
//  1. course_starts, even alongside course_not_started
//  2. course_not_started
//  3. send_answer when poll_answered is also present
//  4. otherwise the lexically first candidate
//  5. "unmatched" for an empty set
//
// Rule 4 has no domain meaning; lexical order only makes it deterministic.
func Resolve(candidates []string) string {
	has := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		has[c] = true
	}

	switch {
	case has[CourseStarts.String()]:
		return CourseStarts.String()
	case has[CourseNotStarted.String()]:
		return CourseNotStarted.String()
	case has[PollAnswered.String()] && has[SendAnswer.String()]:
		return SendAnswer.String()
	case len(candidates) > 0:
		sorted := append([]string(nil), candidates...)
		sort.Strings(sorted)
		return sorted[0]
	default:
		return UnmatchedName
	}
}
