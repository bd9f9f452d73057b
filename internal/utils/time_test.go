package utils

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "utc",
			input: "2026-04-15T09:00:00Z",
			want:  time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "offset is converted to utc",
			input: "2026-04-15T10:00:00+01:00",
			want:  time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "fractional seconds are dropped",
			input: "2026-04-15T09:00:00.750Z",
			want:  time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "date only",
			input:   "2026-04-15",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "tomorrow",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp() = %v, want %v", got, tt.want)
			}
			if !tt.wantErr && got.Location() != time.UTC {
				t.Errorf("ParseTimestamp() location = %v, want UTC", got.Location())
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	in := time.Date(2026, 1, 2, 11, 30, 15, 999, loc)
	if got := FormatTimestamp(in); got != "2026-01-02T09:30:15Z" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}

func TestCombineDateAndHour(t *testing.T) {
	got, err := CombineDateAndHour("2026-02-15", 9)
	if err != nil {
		t.Fatalf("CombineDateAndHour() error = %v", err)
	}
	want := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDateAndHour() = %v, want %v", got, want)
	}

	if _, err := CombineDateAndHour("2026-02-15", 24); err == nil {
		t.Error("expected error for hour 24")
	}
	if _, err := CombineDateAndHour("15/02/2026", 9); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)
	if got := FormatDate(Today(now)); got != "2026-07-31" {
		t.Errorf("Today() = %s", got)
	}
}

func TestValidateDateFormat(t *testing.T) {
	if !ValidateDateFormat("2026-12-01") {
		t.Error("expected valid date")
	}
	if ValidateDateFormat("2026-13-01") {
		t.Error("expected month 13 to be invalid")
	}
}
