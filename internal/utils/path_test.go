package utils

import (
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/tester"},
		{"~/.config/finlit/finlit.db", filepath.Join("/home/tester", ".config/finlit/finlit.db")},
		{"/var/lib/finlit.db", "/var/lib/finlit.db"},
		{"relative.db", "relative.db"},
		{"~other/file", "~other/file"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
