package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"habits/internal/app"
	"habits/internal/domain"
)

type mockHabitRepo struct {
	listFn   func(ctx context.Context) ([]domain.Habit, error)
	getFn    func(ctx context.Context, id string) (*domain.Habit, error)
	createFn func(ctx context.Context, h domain.Habit) (*domain.Habit, error)
	updateFn func(ctx context.Context, id string, in domain.HabitInput, at time.Time) (*domain.Habit, error)
	deleteFn func(ctx context.Context, id string) error
	upsertFn func(ctx context.Context, id string, e domain.Entry, at time.Time) (*domain.Habit, error)
	searchFn func(ctx context.Context, name string) ([]domain.Habit, error)
}

func (m *mockHabitRepo) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockHabitRepo) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockHabitRepo) CreateHabit(ctx context.Context, h domain.Habit) (*domain.Habit, error) {
	if m.createFn != nil {
		return m.createFn(ctx, h)
	}
	return &h, nil
}

func (m *mockHabitRepo) UpdateHabit(ctx context.Context, id string, in domain.HabitInput, at time.Time) (*domain.Habit, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in, at)
	}
	return &domain.Habit{ID: id, Name: in.Name, TargetFrequency: in.TargetFrequency}, nil
}

func (m *mockHabitRepo) DeleteHabit(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockHabitRepo) UpsertEntry(ctx context.Context, id string, e domain.Entry, at time.Time) (*domain.Habit, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, e, at)
	}
	return &domain.Habit{ID: id, Entries: []domain.Entry{e}}, nil
}

func (m *mockHabitRepo) SearchHabits(ctx context.Context, name string) ([]domain.Habit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, name)
	}
	return nil, nil
}

func TestCreateHabit_Validation(t *testing.T) {
	svc := app.NewHabitService(&mockHabitRepo{
		createFn: func(_ context.Context, _ domain.Habit) (*domain.Habit, error) {
			t.Fatal("repository must not be called for invalid input")
			return nil, nil
		},
	}, nil)

	tests := []struct {
		name  string
		in    domain.HabitInput
		field string
	}{
		{"empty name", domain.HabitInput{Name: "", TargetFrequency: 3}, "name"},
		{"blank name", domain.HabitInput{Name: "   ", TargetFrequency: 3}, "name"},
		{"long name", domain.HabitInput{Name: strings.Repeat("a", 101), TargetFrequency: 3}, "name"},
		{"long description", domain.HabitInput{Name: "Read", Description: strings.Repeat("d", 201), TargetFrequency: 3}, "description"},
		{"target zero", domain.HabitInput{Name: "Read", TargetFrequency: 0}, "targetFrequency"},
		{"target eight", domain.HabitInput{Name: "Read", TargetFrequency: 8}, "targetFrequency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			var verr *app.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestCreateHabit_Success(t *testing.T) {
	fixed := time.Date(2026, 2, 8, 7, 0, 0, 0, time.UTC)
	var stored domain.Habit
	repo := &mockHabitRepo{
		createFn: func(_ context.Context, h domain.Habit) (*domain.Habit, error) {
			stored = h
			return &h, nil
		},
	}
	svc := app.NewHabitService(repo, nil).WithClock(func() time.Time { return fixed })

	h, err := svc.Create(context.Background(), domain.HabitInput{Name: "  Read  ", Description: "30 minutes", TargetFrequency: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if stored.Name != "Read" {
		t.Fatalf("expected trimmed name, got %q", stored.Name)
	}
	if stored.Entries == nil || len(stored.Entries) != 0 {
		t.Fatalf("expected empty non-nil entries, got %v", stored.Entries)
	}
	if !stored.CreatedAt.Equal(fixed) || !stored.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected timestamps %v, got %v / %v", fixed, stored.CreatedAt.Time, stored.UpdatedAt.Time)
	}
}

func TestAddEntry_BadDate(t *testing.T) {
	svc := app.NewHabitService(&mockHabitRepo{}, nil)
	_, err := svc.AddEntry(context.Background(), "h1", "02/08/2026", true, "")
	var verr *app.ValidationError
	if !errors.As(err, &verr) || verr.Field != "date" {
		t.Fatalf("expected date validation error, got %v", err)
	}
}

func TestAddEntry_PassesEntry(t *testing.T) {
	fixed := time.Date(2026, 2, 8, 7, 0, 0, 0, time.UTC)
	repo := &mockHabitRepo{
		upsertFn: func(_ context.Context, id string, e domain.Entry, at time.Time) (*domain.Habit, error) {
			if id != "h1" {
				t.Fatalf("unexpected id %q", id)
			}
			if e.Date != "2026-02-08" || !e.Completed || e.Notes != "felt good" {
				t.Fatalf("unexpected entry %+v", e)
			}
			if !at.Equal(fixed) || !e.Timestamp.Equal(fixed) {
				t.Fatalf("unexpected time %v", at)
			}
			return &domain.Habit{ID: id, Entries: []domain.Entry{e}}, nil
		},
	}
	svc := app.NewHabitService(repo, nil).WithClock(func() time.Time { return fixed })

	h, err := svc.AddEntry(context.Background(), "h1", "2026-02-08", true, "felt good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(h.Entries))
	}
}

func TestAddEntry_NotFound(t *testing.T) {
	repo := &mockHabitRepo{
		upsertFn: func(_ context.Context, _ string, _ domain.Entry, _ time.Time) (*domain.Habit, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := app.NewHabitService(repo, nil)
	_, err := svc.AddEntry(context.Background(), "missing", "2026-02-08", true, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHabit_Validation(t *testing.T) {
	svc := app.NewHabitService(&mockHabitRepo{}, nil)
	_, err := svc.Update(context.Background(), "h1", domain.HabitInput{Name: "Read", TargetFrequency: 9})
	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	h, err := svc.Update(context.Background(), "h1", domain.HabitInput{Name: "Read", TargetFrequency: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.TargetFrequency != 4 {
		t.Fatalf("expected target 4, got %d", h.TargetFrequency)
	}
}

type pingingRepo struct {
	mockHabitRepo
	err error
}

func (m *pingingRepo) Ping(context.Context) error { return m.err }

func TestReady(t *testing.T) {
	if err := app.NewHabitService(&mockHabitRepo{}, nil).Ready(context.Background()); err != nil {
		t.Fatalf("store without Ping should be ready, got %v", err)
	}
	if err := app.NewHabitService(&pingingRepo{}, nil).Ready(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	down := errors.New("connection refused")
	if err := app.NewHabitService(&pingingRepo{err: down}, nil).Ready(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected %v, got %v", down, err)
	}
}
