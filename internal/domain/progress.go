package domain

import (
	"math"
	"strconv"
	"time"
)

// GoalAchievedLabel is shown once the weekly target is met.
const GoalAchievedLabel = "Goal Achieved!"

// DayString formats t as a calendar day in loc.
func DayString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// TodayEntry returns the first entry dated today, or nil. Duplicate-date
// entries are not merged; only the first match counts.
func TodayEntry(h Habit, today string) *Entry {
	for i := range h.Entries {
		if h.Entries[i].Date == today {
			e := h.Entries[i]
			return &e
		}
	}
	return nil
}

// WeeklyProgress counts completed entries whose day, taken as midnight in
// loc, is not earlier than now minus seven days. Unparseable dates are
// skipped.
func WeeklyProgress(h Habit, now time.Time, loc *time.Location) int {
	cutoff := now.AddDate(0, 0, -7)
	n := 0
	for _, e := range h.Entries {
		if !e.Completed {
			continue
		}
		day, err := time.ParseInLocation(DayLayout, e.Date, loc)
		if err != nil {
			continue
		}
		if !day.Before(cutoff) {
			n++
		}
	}
	return n
}

// ProgressPercent is min(round(100*done/target), 100). A non-positive target
// counts as fully met once anything is done.
func ProgressPercent(done, target int) int {
	if target <= 0 {
		if done > 0 {
			return 100
		}
		return 0
	}
	pct := int(math.Floor(100*float64(done)/float64(target) + 0.5))
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressLabel renders the weekly progress text.
func ProgressLabel(done, target int) string {
	if done >= target {
		return GoalAchievedLabel
	}
	return strconv.Itoa(done) + " of " + strconv.Itoa(target)
}
