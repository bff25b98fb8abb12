package shared

import (
	"fmt"
	"time"
)

// DayLayout is the storage and wire format for calendar days.
const DayLayout = "2006-01-02"

// FormatDay renders the calendar day of t in t's location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD string as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Millis converts t to Unix milliseconds for storage.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts stored Unix milliseconds back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
