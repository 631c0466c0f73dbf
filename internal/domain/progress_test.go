package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"habits/internal/domain"
)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name         string
		done, target int
		want         int
	}{
		{"nothing done", 0, 7, 0},
		{"one of seven rounds down", 1, 7, 14},
		{"half rounds up", 1, 2, 50},
		{"two of three rounds up", 2, 3, 67},
		{"exactly met", 3, 3, 100},
		{"capped", 9, 3, 100},
		{"zero target nothing done", 0, 0, 0},
		{"zero target something done", 2, 0, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.ProgressPercent(tc.done, tc.target); got != tc.want {
				t.Errorf("ProgressPercent(%d, %d) = %d; want %d", tc.done, tc.target, got, tc.want)
			}
		})
	}
}

func TestProgressLabel(t *testing.T) {
	tests := []struct {
		done, target int
		want         string
	}{
		{0, 7, "0 of 7"},
		{3, 5, "3 of 5"},
		{5, 5, "Goal Achieved!"},
		{6, 5, "Goal Achieved!"},
	}
	for _, tc := range tests {
		if got := domain.ProgressLabel(tc.done, tc.target); got != tc.want {
			t.Errorf("ProgressLabel(%d, %d) = %q; want %q", tc.done, tc.target, got, tc.want)
		}
	}
}

func TestTodayEntry_FirstMatchWins(t *testing.T) {
	h := domain.Habit{Entries: []domain.Entry{
		{Date: "2026-02-07", Completed: true},
		{Date: "2026-02-08", Completed: false, Notes: "first"},
		{Date: "2026-02-08", Completed: true, Notes: "second"},
	}}

	e := domain.TodayEntry(h, "2026-02-08")
	if e == nil {
		t.Fatal("expected an entry for today")
	}
	if e.Notes != "first" || e.Completed {
		t.Errorf("expected first duplicate, got %+v", e)
	}
	if domain.TodayEntry(h, "2026-02-09") != nil {
		t.Error("expected nil for a day without entries")
	}
}

func TestWeeklyProgress(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 2, 8, 15, 30, 0, 0, loc)

	h := domain.Habit{Entries: []domain.Entry{
		{Date: "2026-02-08", Completed: true},  // today
		{Date: "2026-02-02", Completed: true},  // six days ago
		{Date: "2026-02-01", Completed: true},  // seven days ago, midnight is before the cutoff
		{Date: "2026-01-20", Completed: true},  // long ago
		{Date: "2026-02-05", Completed: false}, // not completed
		{Date: "garbage", Completed: true},     // unparseable
	}}

	if got := domain.WeeklyProgress(h, now, loc); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	// At exactly midnight the entry from seven days ago sits on the cutoff.
	midnight := time.Date(2026, 2, 8, 0, 0, 0, 0, loc)
	if got := domain.WeeklyProgress(h, midnight, loc); got != 3 {
		t.Fatalf("expected 3 at midnight, got %d", got)
	}
}

func TestReplaceEntry(t *testing.T) {
	entries := []domain.Entry{
		{Date: "2026-02-07", Completed: true},
		{Date: "2026-02-08", Completed: false},
	}
	got := domain.ReplaceEntry(entries, domain.Entry{Date: "2026-02-08", Completed: true})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[1].Date != "2026-02-08" || !got[1].Completed {
		t.Errorf("expected replaced entry last, got %+v", got[1])
	}
	if entries[1].Completed {
		t.Error("input slice was modified")
	}
}

func TestTimestampJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"local date time", `"2026-02-08T07:15:00"`, time.Date(2026, 2, 8, 7, 15, 0, 0, time.UTC)},
		{"with fraction", `"2026-02-08T07:15:00.123"`, time.Date(2026, 2, 8, 7, 15, 0, 0, time.UTC)},
		{"rfc3339", `"2026-02-08T08:15:00+01:00"`, time.Date(2026, 2, 8, 7, 15, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ts domain.Timestamp
			if err := json.Unmarshal([]byte(tc.in), &ts); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !ts.Equal(tc.want) {
				t.Errorf("got %v; want %v", ts.Time, tc.want)
			}
		})
	}

	b, err := json.Marshal(domain.NewTimestamp(time.Date(2026, 2, 8, 7, 15, 0, 500, time.UTC)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-02-08T07:15:00"` {
		t.Errorf("unexpected encoding %s", b)
	}

	var bad domain.Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}
