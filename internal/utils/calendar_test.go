package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstDueMonth(t *testing.T) {
	tests := []struct {
		name   string
		today  time.Time
		dueDay int
		want   time.Time
	}{
		{"before due day", date(2026, 3, 10), 15, date(2026, 3, 1)},
		{"on due day", date(2026, 3, 15), 15, date(2026, 3, 1)},
		{"after due day", date(2026, 3, 16), 15, date(2026, 4, 1)},
		{"after due day in december", date(2026, 12, 20), 5, date(2027, 1, 1)},
		{"due day 31 never passed", date(2026, 4, 30), 31, date(2026, 4, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstDueMonth(tt.today, tt.dueDay)
			if !got.Equal(tt.want) {
				t.Errorf("FirstDueMonth() = %s, want %s", FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestDueDateIn(t *testing.T) {
	tests := []struct {
		name   string
		cursor time.Time
		dueDay int
		mode   OverflowMode
		want   time.Time
	}{
		{"regular day", date(2026, 5, 1), 15, OverflowFallback, date(2026, 5, 15)},
		{"last day exists", date(2026, 1, 1), 31, OverflowFallback, date(2026, 1, 31)},
		{"fallback on short month", date(2026, 4, 1), 31, OverflowFallback, date(2026, 4, 1)},
		{"fallback in february", date(2026, 2, 1), 30, OverflowFallback, date(2026, 2, 1)},
		{"leap february has 29th", date(2028, 2, 1), 29, OverflowFallback, date(2028, 2, 29)},
		{"clamp on short month", date(2026, 4, 1), 31, OverflowClamp, date(2026, 4, 30)},
		{"clamp in february", date(2026, 2, 1), 30, OverflowClamp, date(2026, 2, 28)},
		{"clamp does not move valid days", date(2026, 6, 1), 12, OverflowClamp, date(2026, 6, 12)},
		{"cursor mid month", date(2026, 6, 20), 3, OverflowFallback, date(2026, 6, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDateIn(tt.cursor, tt.dueDay, tt.mode)
			if !got.Equal(tt.want) {
				t.Errorf("DueDateIn() = %s, want %s", FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestNextMonth(t *testing.T) {
	if got := NextMonth(date(2026, 12, 17)); !got.Equal(date(2027, 1, 1)) {
		t.Errorf("NextMonth(dec) = %s", FormatDate(got))
	}
	if got := NextMonth(date(2026, 1, 31)); !got.Equal(date(2026, 2, 1)) {
		t.Errorf("NextMonth(jan 31) = %s", FormatDate(got))
	}
}

func TestDaysIn(t *testing.T) {
	cases := map[time.Month]int{time.January: 31, time.February: 28, time.April: 30}
	for m, want := range cases {
		if got := DaysIn(2026, m); got != want {
			t.Errorf("DaysIn(2026, %s) = %d, want %d", m, got, want)
		}
	}
	if got := DaysIn(2028, time.February); got != 29 {
		t.Errorf("DaysIn(2028, February) = %d, want 29", got)
	}
}

func TestParseOverflowMode(t *testing.T) {
	if m, err := ParseOverflowMode(""); err != nil || m != OverflowFallback {
		t.Errorf("empty mode = %q, %v", m, err)
	}
	if m, err := ParseOverflowMode("clamp"); err != nil || m != OverflowClamp {
		t.Errorf("clamp mode = %q, %v", m, err)
	}
	if _, err := ParseOverflowMode("round"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
