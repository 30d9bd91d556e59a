package schedule

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id1, err := s.Add(ctx, Course{Day: Monday, Start: "13:00", End: "14:00", Code: "PHY", Name: "Physics"})
	require.NoError(t, err)
	id2, err := s.Add(ctx, Course{Day: Monday, Start: "09:00", End: "10:40", Code: "MATH101", Name: "Algebra"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Course{Day: Tuesday, Start: "09:00", End: "10:00", Name: "Art"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	mon, err := s.CoursesForDay(ctx, Monday)
	require.NoError(t, err)
	require.Len(t, mon, 2)
	assert.Equal(t, "Algebra", mon[0].Name)
	assert.Equal(t, "Physics", mon[1].Name)
	assert.False(t, mon[0].CreatedAt.IsZero())
	assert.Nil(t, mon[0].UpdatedAt)

	c, err := s.Get(ctx, id1)
	require.NoError(t, err)
	c.End = "14:30"
	require.NoError(t, s.Update(ctx, c))
	c, err = s.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "14:30", c.End)
	assert.NotNil(t, c.UpdatedAt)

	require.NoError(t, s.Delete(ctx, id2))
	assert.True(t, IsNotFound(s.Delete(ctx, id2)))
	_, err = s.Get(ctx, id2)
	assert.ErrorIs(t, err, ErrNotFound)

	// ids are never reused
	id4, err := s.Add(ctx, Course{Day: Friday, Start: "08:00", End: "09:00", Name: "Choir"})
	require.NoError(t, err)
	assert.Greater(t, id4, id2)
}

func TestStoreRejectsInvalidCourse(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(context.Background(), Course{Day: Monday, Start: "11:00", End: "10:00", Name: "Backwards"})
	assert.Error(t, err)
}

func TestStoreCurrentAndSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Add(ctx, Course{Day: Monday, Start: "09:00", End: "10:40", Code: "MATH101", Name: "Algebra"})
	require.NoError(t, err)

	cur, err := s.Current(ctx, monday("10:00"))
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "Algebra", cur.Name)

	cur, err = s.Current(ctx, monday("11:00"))
	require.NoError(t, err)
	assert.Nil(t, cur)

	found, err := s.Search(ctx, "math")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = s.Search(ctx, "周一")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

const legacyCSV = "\xEF\xBB\xBFid,day,start_time,end_time,course_code,course_name,created_at\n" +
	"1,周一,09:00,10:40,MATH101,高等数学,2025-09-01 08:00:00\n" +
	"2,周三,8:00,9:35,ENG,English,\n"

func TestReadLegacyCSVAndImport(t *testing.T) {
	courses, err := ReadCSV(strings.NewReader(legacyCSV))
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, Monday, courses[0].Day)
	assert.Equal(t, "高等数学", courses[0].Name)
	assert.Equal(t, 2025, courses[0].CreatedAt.Year())
	assert.Equal(t, "08:00", courses[1].Start)
	assert.True(t, courses[1].CreatedAt.IsZero())

	s := newTestStore(t)
	n, err := s.Import(context.Background(), courses)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	wed, err := s.CoursesForDay(context.Background(), Wednesday)
	require.NoError(t, err)
	require.Len(t, wed, 1)
	assert.False(t, wed[0].CreatedAt.IsZero())
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("day,start_time\nMon,09:00\n"))
	assert.ErrorContains(t, err, "end_time")
}

const legacyJSON = `[
  {
    "id": 3,
    "day": "周二",
    "start_time": "8:00",
    "end_time": "9:40",
    "course_code": "CS201",
    "course_name": "数据结构",
    "created_at": "2025-09-01 10:00:00",
    "updated_at": "2025-09-03 12:30:00"
  },
  {"id": 4, "day": 5, "start_time": "14:00", "end_time": "15:40", "course_name": "Physics"}
]`

func TestReadLegacyJSON(t *testing.T) {
	courses, err := ReadJSON(strings.NewReader(legacyJSON))
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, int64(3), courses[0].ID)
	assert.Equal(t, Tuesday, courses[0].Day)
	assert.Equal(t, "08:00", courses[0].Start)
	assert.Equal(t, "CS201", courses[0].Code)
	assert.Equal(t, "数据结构", courses[0].Name)
	assert.Equal(t, 2025, courses[0].CreatedAt.Year())
	require.NotNil(t, courses[0].UpdatedAt)
	assert.Equal(t, 3, courses[0].UpdatedAt.Day())

	assert.Equal(t, Friday, courses[1].Day)
	assert.Empty(t, courses[1].Code)
	assert.Nil(t, courses[1].UpdatedAt)

	_, err = ReadJSON(strings.NewReader(`[{"day": "someday", "start_time": "09:00", "end_time": "10:00"}]`))
	assert.ErrorContains(t, err, "entry 1")
}

func TestReadFilePicksLayoutByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "courses.JSON")
	csvPath := filepath.Join(dir, "courses.csv")
	require.NoError(t, os.WriteFile(jsonPath, []byte(legacyJSON), 0o644))
	require.NoError(t, os.WriteFile(csvPath, []byte(legacyCSV), 0o644))

	fromJSON, err := ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, fromJSON, 2)

	fromCSV, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, fromCSV, 2)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestWriteCSVLegacyDays(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2025, 9, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, WriteCSV(&buf, []Course{
		{ID: 1, Day: Monday, Start: "09:00", End: "10:40", Code: "MATH101", Name: "Algebra", CreatedAt: created},
	}, true))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBFid,day,"))
	assert.Contains(t, out, "1,周一,09:00,10:40,MATH101,Algebra,2025-09-01 08:00:00,")

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, Monday, back[0].Day)
}

func TestIconPathFor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "高等数学.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Algebra_I.webp"), []byte("x"), 0o644))

	icons := IconDir{Dir: dir}

	path, ok := icons.IconPathFor("高等数学")
	require.True(t, ok)
	assert.Equal(t, "高等数学.jpg", filepath.Base(path))

	path, ok = icons.IconPathFor("Algebra_I!")
	require.True(t, ok)
	assert.Equal(t, "Algebra_I.webp", filepath.Base(path))

	_, ok = icons.IconPathFor("History")
	assert.False(t, ok)
	_, ok = icons.IconPathFor("!!!")
	assert.False(t, ok)
	_, ok = IconDir{Dir: filepath.Join(dir, "missing")}.IconPathFor("高等数学")
	assert.False(t, ok)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Data_Structures-2Fall", SanitizeName("Data_Structures-2 (Fall)"))
	assert.Equal(t, "线性代数A", SanitizeName("线性代数 (A)"))
}
