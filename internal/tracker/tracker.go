// Package tracker is the habit list view-model: it mirrors the server's
// habits in memory, calls the REST API for every change and derives the
// per-habit statistics shown to the user.
package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"habits/internal/client"
	"habits/internal/domain"

	"go.uber.org/zap"
)

// Operation descriptions prefixed to failures.
const (
	OpFetch  = "Failed to fetch habits"
	OpCreate = "Failed to create habit"
	OpDelete = "Failed to delete habit"
	OpEntry  = "Failed to update habit entry"
	OpSearch = "Failed to search habits"
	OpShow   = "Failed to fetch habit"
	OpUpdate = "Failed to update habit"
)

var (
	// ErrNameRequired is reported when the form name is blank.
	ErrNameRequired = errors.New("Habit name is required")
	// ErrUnexpectedFormat is reported when the list payload has an unknown shape.
	ErrUnexpectedFormat = errors.New("Unexpected habits data format from API")
)

// OpError is a failed API call, rendered as "<Op>: <Err>".
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

// API is the subset of the REST client the tracker uses.
type API interface {
	ListHabits(ctx context.Context) ([]domain.Habit, error)
	SearchHabits(ctx context.Context, name string) ([]domain.Habit, error)
	GetHabit(ctx context.Context, id string) (*domain.Habit, error)
	UpdateHabit(ctx context.Context, id string, in domain.HabitInput) (*domain.Habit, error)
	CreateHabit(ctx context.Context, in domain.HabitInput) (*domain.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	AddEntry(ctx context.Context, id, date string, completed bool, notes string) (*domain.Habit, error)
}

var _ API = (*client.Client)(nil)

// Tracker holds the in-memory habit list, the new-habit form, one shared
// loading flag and one shared error message. It is safe for concurrent use;
// the lock is never held during a network call, so racing calls resolve in
// whatever order their responses arrive.
type Tracker struct {
	api API
	log *zap.Logger
	now func() time.Time
	loc *time.Location

	mu      sync.Mutex
	habits  []domain.Habit
	form    Form
	loading bool
	errMsg  string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the time zone that defines "today". The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// New creates an empty Tracker.
func New(api API, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		api:  api,
		log:  log,
		now:  time.Now,
		loc:  time.UTC,
		form: NewForm(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fetch replaces the list with the server's habits.
func (t *Tracker) Fetch(ctx context.Context) error {
	t.begin()
	defer t.finish()

	habits, err := t.api.ListHabits(ctx)
	return t.replaceAll(OpFetch, habits, err)
}

// Search replaces the list with the habits whose name contains name.
func (t *Tracker) Search(ctx context.Context, name string) error {
	t.begin()
	defer t.finish()

	habits, err := t.api.SearchHabits(ctx, name)
	return t.replaceAll(OpSearch, habits, err)
}

// Show narrows the list to the single habit id.
func (t *Tracker) Show(ctx context.Context, id string) error {
	t.begin()
	defer t.finish()

	h, err := t.api.GetHabit(ctx, id)
	if err != nil {
		return t.fail(OpShow, err)
	}
	return t.replaceAll(OpShow, []domain.Habit{*h}, nil)
}

func (t *Tracker) replaceAll(op string, habits []domain.Habit, err error) error {
	if errors.Is(err, client.ErrUnexpectedFormat) {
		t.mu.Lock()
		t.habits = []domain.Habit{}
		t.errMsg = ErrUnexpectedFormat.Error()
		t.mu.Unlock()
		t.log.Warn("unexpected habits payload", zap.Error(err))
		return ErrUnexpectedFormat
	}
	if err != nil {
		return t.fail(op, err)
	}

	t.mu.Lock()
	t.habits = habits
	t.errMsg = ""
	t.mu.Unlock()
	t.log.Debug("loaded habits", zap.Int("count", len(habits)))
	return nil
}

// Create submits the form. A blank name is rejected without a network
// call. On success the server's record is appended and the form reset.
func (t *Tracker) Create(ctx context.Context) error {
	t.mu.Lock()
	form := t.form
	if strings.TrimSpace(form.Name) == "" {
		t.errMsg = ErrNameRequired.Error()
		t.mu.Unlock()
		return ErrNameRequired
	}
	t.mu.Unlock()

	t.begin()
	defer t.finish()

	h, err := t.api.CreateHabit(ctx, form.Input())
	if err != nil {
		return t.fail(OpCreate, err)
	}

	t.mu.Lock()
	t.habits = append(t.habits, *h)
	t.form = NewForm()
	t.errMsg = ""
	t.mu.Unlock()
	t.log.Info("created habit", zap.String("id", h.ID), zap.String("name", h.Name))
	return nil
}

// Delete removes a habit on the server and then from the list.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.begin()
	defer t.finish()

	if err := t.api.DeleteHabit(ctx, id); err != nil {
		return t.fail(OpDelete, err)
	}

	t.mu.Lock()
	kept := make([]domain.Habit, 0, len(t.habits))
	for _, h := range t.habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	t.habits = kept
	t.errMsg = ""
	t.mu.Unlock()
	t.log.Info("deleted habit", zap.String("id", id))
	return nil
}

// Update replaces the editable fields of a habit and swaps in the server's
// record. A blank name is rejected without a network call.
func (t *Tracker) Update(ctx context.Context, id string, in domain.HabitInput) error {
	if strings.TrimSpace(in.Name) == "" {
		t.mu.Lock()
		t.errMsg = ErrNameRequired.Error()
		t.mu.Unlock()
		return ErrNameRequired
	}

	t.begin()
	defer t.finish()

	h, err := t.api.UpdateHabit(ctx, id, in)
	if err != nil {
		return t.fail(OpUpdate, err)
	}
	t.replaceOne(id, *h)
	t.log.Info("updated habit", zap.String("id", id))
	return nil
}

// Lookup returns the listed habit with id.
func (t *Tracker) Lookup(id string) (domain.Habit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.habits {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Habit{}, false
}

// MarkComplete upserts the entry for date and replaces the habit with the
// server's returned record, entries included.
func (t *Tracker) MarkComplete(ctx context.Context, id, date string, completed bool, notes string) error {
	t.begin()
	defer t.finish()

	h, err := t.api.AddEntry(ctx, id, date, completed, notes)
	if err != nil {
		return t.fail(OpEntry, err)
	}
	t.replaceOne(id, *h)
	t.log.Info("updated habit entry", zap.String("id", id), zap.String("date", date), zap.Bool("completed", completed))
	return nil
}

// ToggleToday flips today's completion for a habit in the list.
func (t *Tracker) ToggleToday(ctx context.Context, id string) error {
	today := t.Today()
	completed := false
	t.mu.Lock()
	for _, h := range t.habits {
		if h.ID == id {
			if e := domain.TodayEntry(h, today); e != nil {
				completed = e.Completed
			}
			break
		}
	}
	t.mu.Unlock()
	return t.MarkComplete(ctx, id, today, !completed, "")
}

// Today is the current calendar day in the tracker's location.
func (t *Tracker) Today() string {
	return domain.DayString(t.now(), t.loc)
}

// Habits returns a copy of the list.
func (t *Tracker) Habits() []domain.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Habit, len(t.habits))
	copy(out, t.habits)
	return out
}

// Loading reports whether any call is in flight.
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Err returns the current error message, or "".
func (t *Tracker) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// Form returns the new-habit form.
func (t *Tracker) Form() Form {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// EditForm applies fn to the new-habit form.
func (t *Tracker) EditForm(fn func(f *Form)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.form)
}

func (t *Tracker) replaceOne(id string, h domain.Habit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.habits {
		if t.habits[i].ID == id {
			t.habits[i] = h
		}
	}
	t.errMsg = ""
}

func (t *Tracker) begin() {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()
}

func (t *Tracker) finish() {
	t.mu.Lock()
	t.loading = false
	t.mu.Unlock()
}

func (t *Tracker) fail(op string, err error) error {
	oe := &OpError{Op: op, Err: err}
	t.mu.Lock()
	t.errMsg = oe.Error()
	t.mu.Unlock()
	t.log.Error(op, zap.Error(err))
	return oe
}
