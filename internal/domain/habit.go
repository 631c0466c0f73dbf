// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DayLayout is the wire and storage format of an entry date.
const DayLayout = "2006-01-02"

// Limits on user-supplied habit fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 200
	MinTargetFrequency   = 1
	MaxTargetFrequency   = 7
	DefaultTarget        = 7
)

// ErrNotFound is returned by repositories when a habit does not exist.
var ErrNotFound = errors.New("habit not found")

// Habit is a trackable recurring activity with a weekly target frequency.
type Habit struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	TargetFrequency int       `json:"targetFrequency"`
	Entries         []Entry   `json:"entries"`
	CreatedAt       Timestamp `json:"createdAt,omitzero"`
	UpdatedAt       Timestamp `json:"updatedAt,omitzero"`
}

// Entry is a single day's completion record for a habit.
type Entry struct {
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp Timestamp `json:"timestamp,omitzero"`
}

// HabitInput carries the user-editable fields of a habit.
type HabitInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	TargetFrequency int    `json:"targetFrequency"`
}

// HabitRepository is the port for habit persistence.
//
// Get, Update, Delete and UpsertEntry return ErrNotFound for unknown ids.
type HabitRepository interface {
	ListHabits(ctx context.Context) ([]Habit, error)
	GetHabit(ctx context.Context, id string) (*Habit, error)
	CreateHabit(ctx context.Context, h Habit) (*Habit, error)
	UpdateHabit(ctx context.Context, id string, in HabitInput, updatedAt time.Time) (*Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	UpsertEntry(ctx context.Context, id string, e Entry, updatedAt time.Time) (*Habit, error)
	SearchHabits(ctx context.Context, name string) ([]Habit, error)
}

// ReplaceEntry drops every entry dated e.Date and appends e.
func ReplaceEntry(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	for _, cur := range entries {
		if cur.Date != e.Date {
			out = append(out, cur)
		}
	}
	return append(out, e)
}

// NameMatches reports whether name contains query, ignoring case.
func NameMatches(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}
