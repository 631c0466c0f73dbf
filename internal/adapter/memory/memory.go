// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"habits/internal/domain"
)

// DB implements an in-memory habit store. Habits are kept in insertion order.
type DB struct {
	mu     sync.Mutex
	habits []domain.Habit
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.HabitRepository = (*DB)(nil)

// ListHabits returns copies of all habits.
func (db *DB) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Habit, 0, len(db.habits))
	for _, h := range db.habits {
		out = append(out, clone(h))
	}
	return out, nil
}

// GetHabit returns a habit by id.
func (db *DB) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.index(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	h := clone(db.habits[i])
	return &h, nil
}

// CreateHabit stores h as given.
func (db *DB) CreateHabit(ctx context.Context, h domain.Habit) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if h.Entries == nil {
		h.Entries = []domain.Entry{}
	}
	db.habits = append(db.habits, clone(h))
	out := clone(h)
	return &out, nil
}

// UpdateHabit replaces the editable fields of a habit.
func (db *DB) UpdateHabit(ctx context.Context, id string, in domain.HabitInput, updatedAt time.Time) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.index(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	h := &db.habits[i]
	h.Name = in.Name
	h.Description = in.Description
	h.TargetFrequency = in.TargetFrequency
	h.UpdatedAt = domain.NewTimestamp(updatedAt)
	out := clone(*h)
	return &out, nil
}

// DeleteHabit removes a habit by id.
func (db *DB) DeleteHabit(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.index(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	db.habits = append(db.habits[:i], db.habits[i+1:]...)
	return nil
}

// UpsertEntry replaces the entry for e.Date and returns the updated habit.
func (db *DB) UpsertEntry(ctx context.Context, id string, e domain.Entry, updatedAt time.Time) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.index(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	h := &db.habits[i]
	h.Entries = domain.ReplaceEntry(h.Entries, e)
	h.UpdatedAt = domain.NewTimestamp(updatedAt)
	out := clone(*h)
	return &out, nil
}

// SearchHabits returns habits whose name contains name, ignoring case.
func (db *DB) SearchHabits(ctx context.Context, name string) ([]domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Habit{}
	for _, h := range db.habits {
		if domain.NameMatches(h.Name, name) {
			out = append(out, clone(h))
		}
	}
	return out, nil
}

func (db *DB) index(id string) int {
	for i := range db.habits {
		if db.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(h domain.Habit) domain.Habit {
	entries := make([]domain.Entry, len(h.Entries))
	copy(entries, h.Entries)
	h.Entries = entries
	return h
}
