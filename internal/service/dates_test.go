package service

import (
	"testing"
	"time"
)

func TestParseDescriptiveDate(t *testing.T) {
	// Monday 2026-08-31.
	ref := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"iso date", "2026-09-04", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2026-09-04T10:00:00Z", time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC), true},
		{"today", "today", ref, true},
		{"tomorrow", "Tomorrow", ref.AddDate(0, 0, 1), true},
		{"next week", "sometime next week", ref.AddDate(0, 0, 7), true},
		{"next month", "by next month", ref.AddDate(0, 1, 0), true},
		{"month day", "September 4", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), true},
		{"short month ordinal", "Sep 4th", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), true},
		{"day of month", "4th of September", time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), true},
		{"past month rolls to next year", "January 10", time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"slash mm/dd", "9/15", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"slash with short year", "9/15/27", time.Date(2027, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"slash with full year", "09/15/2027", time.Date(2027, 9, 15, 0, 0, 0, 0, time.UTC), true},
		{"descriptive weekday is unparseable", "next Friday", time.Time{}, false},
		{"empty", "  ", time.Time{}, false},
		{"gibberish", "whenever", time.Time{}, false},
		{"day out of range", "September 99", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDescriptiveDate(tt.input, ref)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizePriority(t *testing.T) {
	for input, want := range map[string]string{
		"high": "high", "HIGH": "high", " low ": "low",
		"medium": "medium", "urgent": "medium", "": "medium",
	} {
		if got := normalizePriority(input); got != want {
			t.Errorf("normalizePriority(%q) = %q, want %q", input, got, want)
		}
	}
}
