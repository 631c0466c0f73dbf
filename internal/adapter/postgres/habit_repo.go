package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"habits/internal/domain"
)

var _ domain.HabitRepository = (*DB)(nil)

const habitColumns = "id, name, description, target_frequency, created_at, updated_at"

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListHabits returns all habits with their entries, oldest first.
func (d *DB) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	return d.queryHabits(ctx, "SELECT "+habitColumns+" FROM habits ORDER BY seq;")
}

// SearchHabits returns habits whose name contains name, ignoring case.
func (d *DB) SearchHabits(ctx context.Context, name string) ([]domain.Habit, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	return d.queryHabits(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE lower(name) LIKE $1 ORDER BY seq;", pattern)
}

// GetHabit returns one habit with its entries.
func (d *DB) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	return getHabit(ctx, d.sql, id)
}

// CreateHabit inserts h and any entries it carries.
func (d *DB) CreateHabit(ctx context.Context, h domain.Habit) (*domain.Habit, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO habits(id, name, description, target_frequency, created_at, updated_at) VALUES($1, $2, $3, $4, $5, $6);",
		h.ID, h.Name, h.Description, h.TargetFrequency, h.CreatedAt.UTC(), h.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, err
	}
	for _, e := range h.Entries {
		if err := insertEntry(ctx, tx, h.ID, e); err != nil {
			return nil, err
		}
	}
	out, err := getHabit(ctx, tx, h.ID)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit()
}

// UpdateHabit replaces the editable fields of a habit.
func (d *DB) UpdateHabit(ctx context.Context, id string, in domain.HabitInput, updatedAt time.Time) (*domain.Habit, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE habits SET name=$1, description=$2, target_frequency=$3, updated_at=$4 WHERE id=$5;",
		in.Name, in.Description, in.TargetFrequency, updatedAt.UTC(), id,
	)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return d.GetHabit(ctx, id)
}

// DeleteHabit removes a habit; its entries cascade.
func (d *DB) DeleteHabit(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM habits WHERE id=$1;", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpsertEntry replaces the entry for e.Date in one transaction.
func (d *DB) UpsertEntry(ctx context.Context, id string, e domain.Entry, updatedAt time.Time) (*domain.Habit, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE habits SET updated_at=$1 WHERE id=$2;", updatedAt.UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_entries WHERE habit_id=$1 AND day=$2;", id, e.Date); err != nil {
		return nil, err
	}
	if err := insertEntry(ctx, tx, id, e); err != nil {
		return nil, err
	}
	out, err := getHabit(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit()
}

func insertEntry(ctx context.Context, tx *sql.Tx, habitID string, e domain.Entry) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO habit_entries(habit_id, day, completed, notes, written_at) VALUES($1, $2, $3, $4, $5);",
		habitID, e.Date, e.Completed, e.Notes, e.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func getHabit(ctx context.Context, q querier, id string) (*domain.Habit, error) {
	var h domain.Habit
	var created, updated time.Time
	err := q.QueryRowContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE id=$1;", id).
		Scan(&h.ID, &h.Name, &h.Description, &h.TargetFrequency, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	h.CreatedAt = domain.NewTimestamp(created)
	h.UpdatedAt = domain.NewTimestamp(updated)

	entries, err := loadEntries(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	h.Entries = entries[id]
	if h.Entries == nil {
		h.Entries = []domain.Entry{}
	}
	return &h, nil
}

func (d *DB) queryHabits(ctx context.Context, query string, args ...any) ([]domain.Habit, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.Habit{}
	ids := []string{}
	for rows.Next() {
		var h domain.Habit
		var created, updated time.Time
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &h.TargetFrequency, &created, &updated); err != nil {
			return nil, err
		}
		h.CreatedAt = domain.NewTimestamp(created)
		h.UpdatedAt = domain.NewTimestamp(updated)
		out = append(out, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	entries, err := loadEntries(ctx, d.sql, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Entries = entries[out[i].ID]
		if out[i].Entries == nil {
			out[i].Entries = []domain.Entry{}
		}
	}
	return out, nil
}

func loadEntries(ctx context.Context, q querier, ids []string) (map[string][]domain.Entry, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		"SELECT habit_id, day, completed, notes, written_at FROM habit_entries WHERE habit_id IN ("+
			strings.Join(placeholders, ", ")+") ORDER BY seq;", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string][]domain.Entry, len(ids))
	for rows.Next() {
		var habitID string
		var e domain.Entry
		var written time.Time
		if err := rows.Scan(&habitID, &e.Date, &e.Completed, &e.Notes, &written); err != nil {
			return nil, err
		}
		e.Timestamp = domain.NewTimestamp(written)
		out[habitID] = append(out[habitID], e)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
