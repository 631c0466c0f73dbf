// Package app holds the application services and business logic.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"habits/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationError reports input rejected by the service.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// HabitService encapsulates habit-tracking use cases.
type HabitService struct {
	repo domain.HabitRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewHabitService creates a HabitService backed by the given repository.
func NewHabitService(repo domain.HabitRepository, log *zap.Logger) *HabitService {
	if log == nil {
		log = zap.NewNop()
	}
	return &HabitService{repo: repo, log: log, now: time.Now}
}

// WithClock replaces the service clock. Used by tests.
func (s *HabitService) WithClock(now func() time.Time) *HabitService {
	s.now = now
	return s
}

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the backing store is reachable. Stores without a
// Ping method are always ready.
func (s *HabitService) Ready(ctx context.Context) error {
	p, ok := s.repo.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		s.log.Warn("store not ready", zap.Error(err))
		return err
	}
	return nil
}

// List returns every habit.
func (s *HabitService) List(ctx context.Context) ([]domain.Habit, error) {
	s.log.Debug("listing habits")
	return s.repo.ListHabits(ctx)
}

// Get returns one habit by id.
func (s *HabitService) Get(ctx context.Context, id string) (*domain.Habit, error) {
	return s.repo.GetHabit(ctx, id)
}

// Create validates and stores a new habit with a fresh id.
func (s *HabitService) Create(ctx context.Context, in domain.HabitInput) (*domain.Habit, error) {
	in, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	now := domain.NewTimestamp(s.now())
	h := domain.Habit{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		TargetFrequency: in.TargetFrequency,
		Entries:         []domain.Entry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.log.Info("creating habit", zap.String("id", h.ID), zap.String("name", h.Name))
	return s.repo.CreateHabit(ctx, h)
}

// Update replaces the editable fields of an existing habit.
func (s *HabitService) Update(ctx context.Context, id string, in domain.HabitInput) (*domain.Habit, error) {
	in, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	s.log.Info("updating habit", zap.String("id", id))
	return s.repo.UpdateHabit(ctx, id, in, s.now())
}

// Delete removes a habit.
func (s *HabitService) Delete(ctx context.Context, id string) error {
	s.log.Info("deleting habit", zap.String("id", id))
	return s.repo.DeleteHabit(ctx, id)
}

// AddEntry upserts the entry for date, replacing any existing entry with the
// same date, and returns the whole updated habit.
func (s *HabitService) AddEntry(ctx context.Context, id, date string, completed bool, notes string) (*domain.Habit, error) {
	if _, err := time.Parse(domain.DayLayout, date); err != nil {
		return nil, &ValidationError{Field: "date", Message: fmt.Sprintf("must be %s", domain.DayLayout)}
	}
	now := s.now()
	e := domain.Entry{
		Date:      date,
		Completed: completed,
		Notes:     notes,
		Timestamp: domain.NewTimestamp(now),
	}
	s.log.Info("adding habit entry", zap.String("id", id), zap.String("date", date), zap.Bool("completed", completed))
	return s.repo.UpsertEntry(ctx, id, e, now)
}

// Search returns habits whose name contains name, ignoring case.
func (s *HabitService) Search(ctx context.Context, name string) ([]domain.Habit, error) {
	return s.repo.SearchHabits(ctx, name)
}

func validateInput(in domain.HabitInput) (domain.HabitInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, &ValidationError{Field: "name", Message: "Habit name is required"}
	}
	if utf8.RuneCountInString(in.Name) > domain.MaxNameLength {
		return in, &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", domain.MaxNameLength)}
	}
	if utf8.RuneCountInString(in.Description) > domain.MaxDescriptionLength {
		return in, &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", domain.MaxDescriptionLength)}
	}
	if in.TargetFrequency < domain.MinTargetFrequency || in.TargetFrequency > domain.MaxTargetFrequency {
		return in, &ValidationError{
			Field:   "targetFrequency",
			Message: fmt.Sprintf("must be between %d and %d", domain.MinTargetFrequency, domain.MaxTargetFrequency),
		}
	}
	return in, nil
}
