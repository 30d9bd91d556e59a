// Package schedule models the weekly class timetable and answers where the
// current time falls relative to it.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a course id does not exist.
var ErrNotFound = errors.New("schedule: course not found")

// Weekday is one of the seven days of the timetable.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Legacy course files spell days as 周一 .. 周日.
var legacyDays = [...]string{"", "周一", "周二", "周三", "周四", "周五", "周六", "周日"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return "?"
	}
	return weekdayNames[d]
}

// Legacy returns the day in the legacy course file spelling.
func (d Weekday) Legacy() string {
	if d < Monday || d > Sunday {
		return ""
	}
	return legacyDays[d]
}

// WeekdayOf returns the timetable day of t.
func WeekdayOf(t time.Time) Weekday {
	if t.Weekday() == time.Sunday {
		return Sunday
	}
	return Weekday(t.Weekday())
}

// ParseWeekday accepts English names or abbreviations, numbers 1 (Monday) to
// 7 (Sunday), and the legacy 周一 .. 周日 / 星期一 .. 星期日 spellings.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 7 {
			return Weekday(n), nil
		}
		return 0, fmt.Errorf("invalid weekday %q", s)
	}

	lower := strings.ToLower(s)
	for d := Monday; d <= Sunday; d++ {
		short := strings.ToLower(weekdayNames[d])
		full := strings.ToLower(time.Weekday(int(d) % 7).String())
		if lower == short || lower == full {
			return d, nil
		}
		if s == legacyDays[d] || s == "星期"+strings.TrimPrefix(legacyDays[d], "周") {
			return d, nil
		}
	}
	if s == "周天" || s == "星期天" {
		return Sunday, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// Course is one weekly timetable entry. Times are zero-padded 24h HH:MM
// strings, so lexical comparison equals chronological comparison.
type Course struct {
	ID        int64      `json:"id"`
	Day       Weekday    `json:"day"`
	Start     string     `json:"start_time"`
	End       string     `json:"end_time"`
	Code      string     `json:"course_code"`
	Name      string     `json:"course_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (c Course) String() string {
	return fmt.Sprintf("%s %s-%s %s", c.Day, c.Start, c.End, c.Name)
}

// Validate checks the day, the time format and that start precedes end.
func (c Course) Validate() error {
	if c.Day < Monday || c.Day > Sunday {
		return fmt.Errorf("invalid weekday %d", c.Day)
	}
	if err := ValidateClock(c.Start); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if err := ValidateClock(c.End); err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if c.Start >= c.End {
		return fmt.Errorf("start time %s is not before end time %s", c.Start, c.End)
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("course name is required")
	}
	return nil
}

// ValidateClock checks a zero-padded 24h HH:MM string.
func ValidateClock(s string) error {
	if len(s) != 5 || s[2] != ':' {
		return fmt.Errorf("%q is not HH:MM", s)
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[3:])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fmt.Errorf("%q is not a valid time", s)
	}
	return nil
}

// NormalizeClock zero-pads loose input such as "9:05" to "09:05".
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%q is not HH:MM", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("%q is not HH:MM", s)
	}
	out := fmt.Sprintf("%02d:%02d", h, m)
	return out, ValidateClock(out)
}

// Clock formats t as HH:MM.
func Clock(t time.Time) string {
	return t.Format("15:04")
}
