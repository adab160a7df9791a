package models

import "testing"

func TestProjectCode(t *testing.T) {
	tests := []struct {
		year, seq int
		want      string
	}{
		{2026, 1, "RES-2026-001"},
		{2026, 42, "RES-2026-042"},
		{2025, 999, "RES-2025-999"},
		{2025, 1000, "RES-2025-1000"},
	}
	for _, tt := range tests {
		if got := ProjectCode(tt.year, tt.seq); got != tt.want {
			t.Errorf("ProjectCode(%d, %d) = %q, want %q", tt.year, tt.seq, got, tt.want)
		}
	}
}

func TestProjectStatusValid(t *testing.T) {
	for _, s := range ProjectStatuses() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []ProjectStatus{"", "pending", "DONE"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
