package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := append(append([]string(nil), in[:i]...), in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"empty set is unmatched", nil, UnmatchedName},
		{"course_starts overrides course_not_started", []string{"course_not_started", "course_starts"}, "course_starts"},
		{"course_starts alone", []string{"course_starts"}, "course_starts"},
		{"course_not_started alone", []string{"course_not_started"}, "course_not_started"},
		{"course_not_started beats ordinary labels", []string{"course_menu", "course_not_started"}, "course_not_started"},
		{"send_answer over poll_answered", []string{"poll_answered", "send_answer"}, "send_answer"},
		{"specials beat send_answer rule", []string{"poll_answered", "send_answer", "course_starts"}, "course_starts"},
		{"single ordinary label", []string{"poll_starts"}, "poll_starts"},
		{"fallback is lexical", []string{"wait_polls1", "leave_session", "poll_starts"}, "leave_session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, perm := range permutations(tt.candidates) {
				assert.Equal(t, tt.want, Resolve(perm), "order %v", perm)
			}
		})
	}
}

func TestResolveDoesNotReorderInput(t *testing.T) {
	in := []string{"zeta", "alpha"}
	Resolve(in)
	assert.Equal(t, []string{"zeta", "alpha"}, in)
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, CourseMenu, ParseLabel("course_menu"))
	assert.Equal(t, LeaveSession, ParseLabel("leave_session"))
	assert.Equal(t, Unmatched, ParseLabel(UnmatchedName))
	assert.Equal(t, Other, ParseLabel("wait_polls1"))
	assert.Equal(t, Other, ParseLabel("other"))
	assert.Equal(t, "send_answer", SendAnswer.String())
	assert.Equal(t, "invalid", Label(99).String())
}

func TestIsSpecial(t *testing.T) {
	assert.True(t, IsSpecial("course_starts"))
	assert.True(t, IsSpecial("course_not_started"))
	assert.False(t, IsSpecial("course_menu"))
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"course_menu":        "Course Menu",
		"course_not_started": "Course Not Started",
		"course_starts":      "Course Starts",
		"leave_session":      "Leave Session",
		"poll_answered":      "Poll Answered",
		"poll_starts":        "Poll Starts",
		"wait_polls1":        "Wait Polls1",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayName(in))
	}
}
