package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
func monday(hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2026-03-02 "+hhmm, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

var algebra = Course{ID: 1, Day: Monday, Start: "09:00", End: "10:40", Code: "MATH101", Name: "Algebra"}

func TestStatusAtSingleCourse(t *testing.T) {
	courses := []Course{algebra}

	s := StatusAt(monday("09:30"), courses)
	assert.Equal(t, InClass, s.Kind)
	require.NotNil(t, s.Current)
	assert.Equal(t, algebra.ID, s.Current.ID)

	s = StatusAt(monday("08:59"), courses)
	assert.Equal(t, BetweenClasses, s.Kind)
	assert.Nil(t, s.Last)
	require.NotNil(t, s.Next)
	assert.Equal(t, algebra.ID, s.Next.ID)

	s = StatusAt(monday("10:41"), courses)
	assert.Equal(t, BetweenClasses, s.Kind)
	require.NotNil(t, s.Last)
	assert.Equal(t, algebra.ID, s.Last.ID)
	assert.Nil(t, s.Next)
}

func TestStatusAtBoundariesAreInclusive(t *testing.T) {
	courses := []Course{algebra}
	assert.Equal(t, InClass, StatusAt(monday("09:00"), courses).Kind)
	assert.Equal(t, InClass, StatusAt(monday("10:40"), courses).Kind)
}

func TestStatusAtPicksNearestNeighbours(t *testing.T) {
	courses := []Course{
		{ID: 3, Start: "14:00", End: "15:00", Name: "Physics"},
		algebra,
		{ID: 2, Start: "11:00", End: "11:50", Name: "History"},
		{ID: 4, Start: "16:00", End: "17:00", Name: "Art"},
	}

	s := StatusAt(monday("12:30"), courses)
	assert.Equal(t, BetweenClasses, s.Kind)
	require.NotNil(t, s.Last)
	require.NotNil(t, s.Next)
	assert.Equal(t, "History", s.Last.Name)
	assert.Equal(t, "Physics", s.Next.Name)
	assert.Contains(t, s.String(), "History ended 11:50")
}

func TestStatusAtNoCourses(t *testing.T) {
	s := StatusAt(monday("09:30"), nil)
	assert.Equal(t, NoClasses, s.Kind)
	assert.Equal(t, "no classes today", s.String())
}

func TestStatusEqual(t *testing.T) {
	a := StatusAt(monday("09:30"), []Course{algebra})
	b := StatusAt(monday("10:00"), []Course{algebra})
	c := StatusAt(monday("10:50"), []Course{algebra})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

type fakeSource struct {
	days  []Weekday
	byDay map[Weekday][]Course
	err   error
}

func (f *fakeSource) CoursesForDay(_ context.Context, day Weekday) ([]Course, error) {
	f.days = append(f.days, day)
	return f.byDay[day], f.err
}

func TestOracleRefetchesEveryCall(t *testing.T) {
	src := &fakeSource{byDay: map[Weekday][]Course{Monday: {algebra}}}
	o := NewOracle(src)
	o.SetClock(func() time.Time { return monday("09:30") })

	s, err := o.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InClass, s.Kind)

	// the course is deleted externally between cycles
	src.byDay[Monday] = nil
	s, err = o.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoClasses, s.Kind)
	assert.Equal(t, []Weekday{Monday, Monday}, src.days)
}

func TestOracleSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("locked")}
	o := NewOracle(src)
	s, err := o.StatusAt(context.Background(), monday("09:30"))
	assert.Error(t, err)
	assert.Equal(t, NoClasses, s.Kind)
}
