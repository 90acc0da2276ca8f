package domain

import (
	"testing"
	"time"
)

func TestClassifyBucketsAgainstLocalMidnights(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 8, 27, 11, 30, 0, 0, loc)

	cases := []struct {
		name string
		due  time.Time
		want Classification
	}{
		{"due yesterday", time.Date(2026, 8, 26, 15, 0, 0, 0, loc), ClassMissed},
		{"due just before today's midnight", time.Date(2026, 8, 26, 23, 59, 0, 0, loc), ClassMissed},
		{"due earlier today", time.Date(2026, 8, 27, 9, 0, 0, 0, loc), ClassUpcoming},
		{"due later today", time.Date(2026, 8, 27, 17, 0, 0, 0, loc), ClassUpcoming},
		{"due exactly tomorrow midnight", time.Date(2026, 8, 28, 0, 0, 0, 0, loc), ClassUpcoming},
		{"due day after tomorrow", time.Date(2026, 8, 29, 10, 0, 0, 0, loc), ClassNone},
	}

	for _, tc := range cases {
		if got := Classify(tc.due, now, loc); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyNormalizesForeignZones(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 8, 27, 11, 30, 0, 0, loc)

	// 20:00 UTC on the 26th is 01:30 on the 27th in Kolkata: still today.
	dueUTC := time.Date(2026, 8, 26, 20, 0, 0, 0, time.UTC)
	if got := Classify(dueUTC, now, loc); got != ClassUpcoming {
		t.Fatalf("got %v, want ClassUpcoming", got)
	}
}
