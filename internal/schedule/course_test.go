package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	cases := map[string]Weekday{
		"Mon":      Monday,
		"monday":   Monday,
		"TUE":      Tuesday,
		"3":        Wednesday,
		"周四":       Thursday,
		"星期五":      Friday,
		"Saturday": Saturday,
		"周日":       Sunday,
		"周天":       Sunday,
		"7":        Sunday,
	}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "0", "8", "Funday"} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "周一", Monday.Legacy())
	assert.Equal(t, "Sun", Sunday.String())
}

func TestCourseValidate(t *testing.T) {
	ok := Course{Day: Monday, Start: "09:00", End: "10:40", Name: "Algebra"}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Start = "10:40"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.End = "9:40"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Day = 0
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Name = " "
	assert.Error(t, bad.Validate())
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	_, err = NormalizeClock("24:00")
	assert.Error(t, err)
	_, err = NormalizeClock("noon")
	assert.Error(t, err)
}
