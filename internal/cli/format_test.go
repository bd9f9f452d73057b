package cli

import (
	"strings"
	"testing"
	"time"
)

func TestParseWhen(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-04-15T09:30:00Z", time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC), false},
		{"2026-04-15T10:30:00+01:00", time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC), false},
		{"2026-04-15 18:45", time.Date(2026, 4, 15, 18, 45, 0, 0, time.UTC), false},
		{"2026-04-15", time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC), false},
		{"next tuesday", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseWhen(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWhen(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseWhen(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"ID", "Title"}, [][]string{{"r1", "Rent"}, {"r2", "Card"}}, 0)
	for _, want := range []string{"ID", "Title", "Rent", "Card"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate kept = %q", got)
	}
	if got := Truncate("a rather long reminder title", 10); got != "a rathe..." {
		t.Errorf("Truncate = %q", got)
	}
}
