package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339

// SQLiteStore persists the timetable in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

// OpenSQLite opens or creates the course database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, clock: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS courses (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		day         INTEGER NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		course_code TEXT NOT NULL DEFAULT '',
		course_name TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_courses_day ON courses(day, start_time);
	`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add validates and inserts a course, returning its new id.
func (s *SQLiteStore) Add(ctx context.Context, c Course) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (day, start_time, end_time, course_code, course_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int(c.Day), c.Start, c.End, c.Code, c.Name, c.CreatedAt.Format(timeLayout), formatOptional(c.UpdatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}
	return res.LastInsertId()
}

// Import inserts courses in a single transaction. Ids in the input are
// ignored; new ids are assigned.
func (s *SQLiteStore) Import(ctx context.Context, courses []Course) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := s.clock()
	for i, c := range courses {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("course %d (%s): %w", i+1, c.Name, err)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO courses (day, start_time, end_time, course_code, course_name, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			int(c.Day), c.Start, c.End, c.Code, c.Name, c.CreatedAt.Format(timeLayout), formatOptional(c.UpdatedAt)); err != nil {
			return 0, fmt.Errorf("insert course %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(courses), nil
}

// Update replaces the stored fields of c.ID and stamps updated_at.
func (s *SQLiteStore) Update(ctx context.Context, c Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	now := s.clock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET day = ?, start_time = ?, end_time = ?, course_code = ?, course_name = ?, updated_at = ?
		 WHERE id = ?`,
		int(c.Day), c.Start, c.End, c.Code, c.Name, now.Format(timeLayout), c.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectOne(res)
}

// Delete removes a course by id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectOne(res)
}

// Get returns one course by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (Course, error) {
	courses, err := s.query(ctx, `WHERE id = ?`, id)
	if err != nil {
		return Course{}, err
	}
	if len(courses) == 0 {
		return Course{}, ErrNotFound
	}
	return courses[0], nil
}

// All returns every course ordered by day and start time.
func (s *SQLiteStore) All(ctx context.Context) ([]Course, error) {
	return s.query(ctx, "")
}

// CoursesForDay returns the courses of one weekday ordered by start time.
func (s *SQLiteStore) CoursesForDay(ctx context.Context, day Weekday) ([]Course, error) {
	return s.query(ctx, `WHERE day = ?`, int(day))
}

// Current returns the course in progress at now, if any.
func (s *SQLiteStore) Current(ctx context.Context, now time.Time) (*Course, error) {
	courses, err := s.CoursesForDay(ctx, WeekdayOf(now))
	if err != nil {
		return nil, err
	}
	status := StatusAt(now, courses)
	return status.Current, nil
}

// Search finds courses whose code, name or day contains keyword,
// case-insensitively.
func (s *SQLiteStore) Search(ctx context.Context, keyword string) ([]Course, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	var out []Course
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Code), kw) ||
			strings.Contains(strings.ToLower(c.Name), kw) ||
			strings.Contains(strings.ToLower(c.Day.String()), kw) ||
			strings.Contains(c.Day.Legacy(), kw) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *SQLiteStore) query(ctx context.Context, where string, args ...any) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day, start_time, end_time, course_code, course_name, created_at, updated_at
		 FROM courses `+where+` ORDER BY day, start_time, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var (
			c         Course
			day       int
			createdAt string
			updatedAt sql.NullString
		)
		if err := rows.Scan(&c.ID, &day, &c.Start, &c.End, &c.Code, &c.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.Day = Weekday(day)
		c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		if updatedAt.Valid {
			if t, err := time.Parse(timeLayout, updatedAt.String); err == nil {
				c.UpdatedAt = &t
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(timeLayout)
}

// IsNotFound reports whether err means the course does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
