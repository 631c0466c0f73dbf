package tracker

import (
	"time"

	"habits/internal/domain"
)

// UI text.
const (
	SubmitIdle      = "Create Habit"
	SubmitBusy      = "Creating..."
	TodayDone       = "Completed ✓"
	TodayPending    = "Mark Complete"
	LoadingText     = "Loading your habits..."
	EmptyText       = "No habits created yet. Start building your first habit above!"
	TodayStatusText = "Today's Status:"
)

// Card is the rendered state of one habit.
type Card struct {
	ID              string
	Name            string
	Description     string
	TargetFrequency int
	WeeklyCompleted int
	ProgressPercent int
	ProgressLabel   string
	TodayCompleted  bool
	TodayLabel      string
}

// View is everything needed to draw the habit screen. Statistics are
// recomputed from the in-memory list on every call.
type View struct {
	Today            string
	Error            string
	Loading          bool
	ControlsDisabled bool
	SubmitLabel      string
	// Placeholder is LoadingText or EmptyText when there are no cards.
	Placeholder string
	Cards       []Card
}

// View derives the current screen state.
func (t *Tracker) View() View {
	now := t.now()
	today := domain.DayString(now, t.loc)

	t.mu.Lock()
	habits := make([]domain.Habit, len(t.habits))
	copy(habits, t.habits)
	v := View{
		Today:            today,
		Error:            t.errMsg,
		Loading:          t.loading,
		ControlsDisabled: t.loading,
		SubmitLabel:      SubmitIdle,
	}
	t.mu.Unlock()

	if v.Loading {
		v.SubmitLabel = SubmitBusy
	}
	if len(habits) == 0 {
		if v.Loading {
			v.Placeholder = LoadingText
		} else {
			v.Placeholder = EmptyText
		}
		return v
	}

	v.Cards = make([]Card, 0, len(habits))
	for _, h := range habits {
		v.Cards = append(v.Cards, cardFor(h, now, today, t.loc))
	}
	return v
}

func cardFor(h domain.Habit, now time.Time, today string, loc *time.Location) Card {
	done := domain.WeeklyProgress(h, now, loc)
	completed := false
	if e := domain.TodayEntry(h, today); e != nil {
		completed = e.Completed
	}
	label := TodayPending
	if completed {
		label = TodayDone
	}
	return Card{
		ID:              h.ID,
		Name:            h.Name,
		Description:     h.Description,
		TargetFrequency: h.TargetFrequency,
		WeeklyCompleted: done,
		ProgressPercent: domain.ProgressPercent(done, h.TargetFrequency),
		ProgressLabel:   domain.ProgressLabel(done, h.TargetFrequency),
		TodayCompleted:  completed,
		TodayLabel:      label,
	}
}
