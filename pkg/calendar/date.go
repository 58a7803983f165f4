// Package calendar implements the date cursor and the day grids shown by
// the field calendar. All arithmetic is done on civil dates held as
// time.Time values at midnight UTC, so adding days or months never crosses a
// local timezone boundary.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire form of a calendar date.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Midnight keeps the civil date of t (in t's own location) and returns it at
// midnight UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns day 1 of t's month at midnight UTC.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return FirstOfMonth(t).AddDate(0, 1, -1).Day()
}

// Today returns the civil date of now as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Midnight(now.In(loc))
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
