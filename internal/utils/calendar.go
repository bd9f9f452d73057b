package utils

import (
	"fmt"
	"time"
)

// OverflowMode decides the due date when a month has fewer days than the
// configured due day (a due day of 31 in April, 29 to 31 in February).
type OverflowMode string

const (
	// OverflowFallback uses the first day of the month. This is the
	// historical behaviour and the default.
	OverflowFallback OverflowMode = "fallback"
	// OverflowClamp uses the last day of the month.
	OverflowClamp OverflowMode = "clamp"
)

func ParseOverflowMode(s string) (OverflowMode, error) {
	switch OverflowMode(s) {
	case "", OverflowFallback:
		return OverflowFallback, nil
	case OverflowClamp:
		return OverflowClamp, nil
	}
	return "", fmt.Errorf("unknown due day overflow mode %q (want %q or %q)", s, OverflowFallback, OverflowClamp)
}

// FirstOfMonth returns midnight UTC on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month after t's month.
func NextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDueMonth picks the month generation starts from: the current month
// unless today is already past the due day.
func FirstDueMonth(today time.Time, dueDay int) time.Time {
	if today.UTC().Day() > dueDay {
		return NextMonth(today)
	}
	return FirstOfMonth(today)
}

// DueDateIn returns the due date inside cursor's month. Days the month does
// not have are resolved by mode.
func DueDateIn(cursor time.Time, dueDay int, mode OverflowMode) time.Time {
	first := FirstOfMonth(cursor)
	last := DaysIn(first.Year(), first.Month())
	switch {
	case dueDay >= 1 && dueDay <= last:
		return first.AddDate(0, 0, dueDay-1)
	case mode == OverflowClamp && dueDay > last:
		return first.AddDate(0, 0, last-1)
	default:
		return first
	}
}
