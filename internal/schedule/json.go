package schedule

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadJSON parses the legacy courses.json layout: an array of objects with
// the same keys as the CSV columns. Days may be strings ("周一", "Mon") or
// numbers, timestamps use the CSV layout.
func ReadJSON(r io.Reader) ([]Course, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(3)
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode courses: %w", err)
	}

	courses := make([]Course, 0, len(records))
	for i, rec := range records {
		c, err := parseRecord(func(name string) string {
			v, ok := rec[name]
			if !ok || v == nil {
				return ""
			}
			return strings.TrimSpace(fmt.Sprint(v))
		})
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// ReadFile reads a course file, choosing the JSON or CSV layout by extension.
func ReadFile(path string) ([]Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}
