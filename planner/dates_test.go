package planner

import (
	"slices"
	"testing"
)

func TestTripDateRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{"multi day", "2026-01-01", "2026-01-03", []string{"2026-01-01", "2026-01-02", "2026-01-03"}},
		{"single day", "2026-05-10", "2026-05-10", []string{"2026-05-10"}},
		{"month boundary", "2026-01-30", "2026-02-02", []string{"2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"}},
		{"leap day", "2028-02-28", "2028-03-01", []string{"2028-02-28", "2028-02-29", "2028-03-01"}},
		{"end before start", "2026-01-03", "2026-01-01", nil},
		{"malformed start", "not-a-date", "2026-01-01", nil},
		{"malformed end", "2026-01-01", "01/03/2026", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TripDateRange(tc.start, tc.end)
			if !slices.Equal(got, tc.want) {
				t.Errorf("TripDateRange(%q, %q) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
