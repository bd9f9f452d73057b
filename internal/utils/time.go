package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/finlit/internal/constants"
)

// Now returns the current UTC time truncated to whole seconds, matching the
// precision instants are stored with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Normalize converts t to UTC at second precision.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// FormatTimestamp renders t in the persisted timestamp format.
func FormatTimestamp(t time.Time) string {
	return Normalize(t).Format(constants.TimestampFormat)
}

// ParseTimestamp parses an RFC3339 timestamp (any offset) and normalizes it.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Normalize(t), nil
}

// ParseDate parses a date string (YYYY-MM-DD) as midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns midnight UTC of the date of now.
func Today(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CombineDateAndHour returns hour:00:00 UTC on the date given as YYYY-MM-DD.
func CombineDateAndHour(dateStr string, hour int) (time.Time, error) {
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour %d", hour)
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return date.Add(time.Duration(hour) * time.Hour), nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}
