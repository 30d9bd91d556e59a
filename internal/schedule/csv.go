package schedule

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column layout of the legacy courses.csv file.
var csvHeader = []string{"id", "day", "start_time", "end_time", "course_code", "course_name", "created_at", "updated_at"}

const csvTimeLayout = "2006-01-02 15:04:05"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a course table with a header row. Columns are located by
// name, a UTF-8 byte order mark is skipped, and loose times like "8:00" are
// zero-padded.
func ReadCSV(r io.Reader) ([]Course, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"day", "start_time", "end_time", "course_name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var courses []Course
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		c, err := parseRecord(func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// parseRecord builds a course from the legacy string fields shared by the
// CSV and JSON layouts. Unparseable ids and timestamps are left zero.
func parseRecord(field func(name string) string) (Course, error) {
	day, err := ParseWeekday(field("day"))
	if err != nil {
		return Course{}, err
	}
	start, err := NormalizeClock(field("start_time"))
	if err != nil {
		return Course{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := NormalizeClock(field("end_time"))
	if err != nil {
		return Course{}, fmt.Errorf("end_time: %w", err)
	}

	c := Course{
		Day:   day,
		Start: start,
		End:   end,
		Code:  field("course_code"),
		Name:  field("course_name"),
	}
	if id, err := strconv.ParseInt(field("id"), 10, 64); err == nil {
		c.ID = id
	}
	if t, err := time.ParseInLocation(csvTimeLayout, field("created_at"), time.Local); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.ParseInLocation(csvTimeLayout, field("updated_at"), time.Local); err == nil {
		c.UpdatedAt = &t
	}
	return c, nil
}

// WriteCSV writes courses in the legacy layout with a byte order mark so
// spreadsheet tools detect UTF-8. legacyDays selects the 周一 day spelling.
func WriteCSV(w io.Writer, courses []Course, legacyDays bool) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range courses {
		day := c.Day.String()
		if legacyDays {
			day = c.Day.Legacy()
		}
		updated := ""
		if c.UpdatedAt != nil {
			updated = c.UpdatedAt.Format(csvTimeLayout)
		}
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format(csvTimeLayout)
		}
		rec := []string{strconv.FormatInt(c.ID, 10), day, c.Start, c.End, c.Code, c.Name, created, updated}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
