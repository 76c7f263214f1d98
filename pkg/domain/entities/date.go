package entities

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used for due dates and ETAs
const DateLayout = "2006-01-02"

// Date truncates t to its calendar date at UTC midnight
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a calendar-date copy of t, or nil
func DatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Date(*t)
	return &d
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", ErrInvalidArgument, s)
	}
	return &t, nil
}

// FormatDate renders a nullable date, empty for nil
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// DaysBetween returns the whole number of days from a to b, both taken as calendar dates
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
