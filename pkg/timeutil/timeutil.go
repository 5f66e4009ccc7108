// Package timeutil holds calendar-date helpers. Grade and attendance dates
// are civil dates without a time of day; they are stored as midnight UTC.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for civil dates.
const DateLayout = "2006-01-02"

// Now is replaced in tests.
var Now = func() time.Time { return time.Now().UTC() }

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date.
func Today() time.Time { return StartOfDay(Now()) }

// StartOfDay truncates t to midnight of its UTC day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// ParseDate parses YYYY-MM-DD. RFC 3339 timestamps are also accepted and
// truncated to their day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	return StartOfDay(t), nil
}

// MustParseDate panics on malformed input. For fixtures and seed data.
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders t as YYYY-MM-DD. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// SameDay reports whether a and b fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DaysBetween returns whole days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}
