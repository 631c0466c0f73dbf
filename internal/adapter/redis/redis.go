// Package redisstore implements the habit repository on Redis. Each habit is
// a JSON document in one hash; a sorted set keeps creation order.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"habits/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxTxRetries = 5

// Store is a Redis-backed habit repository.
type Store struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger
}

var _ domain.HabitRepository = (*Store)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Open connects to Redis and pings it.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, opts.Prefix, log), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string, log *zap.Logger) *Store {
	if prefix == "" {
		prefix = "habits"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{rdb: rdb, prefix: prefix, log: log}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) dataKey() string  { return s.prefix + ":data" }
func (s *Store) orderKey() string { return s.prefix + ":order" }
func (s *Store) seqKey() string   { return s.prefix + ":seq" }

// ListHabits returns all habits in creation order.
func (s *Store) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	ids, err := s.rdb.ZRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

// SearchHabits filters ListHabits by a case-insensitive name match.
func (s *Store) SearchHabits(ctx context.Context, name string) ([]domain.Habit, error) {
	all, err := s.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Habit{}
	for _, h := range all {
		if domain.NameMatches(h.Name, name) {
			out = append(out, h)
		}
	}
	return out, nil
}

// GetHabit returns one habit.
func (s *Store) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	raw, err := s.rdb.HGet(ctx, s.dataKey(), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// CreateHabit stores h and appends it to the creation order.
func (s *Store) CreateHabit(ctx context.Context, h domain.Habit) (*domain.Habit, error) {
	if h.Entries == nil {
		h.Entries = []domain.Entry{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	seq, err := s.rdb.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.dataKey(), h.ID, b)
		p.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(seq), Member: h.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("stored habit", zap.String("id", h.ID), zap.Int64("seq", seq))
	return &h, nil
}

// UpdateHabit replaces the editable fields of a habit.
func (s *Store) UpdateHabit(ctx context.Context, id string, in domain.HabitInput, updatedAt time.Time) (*domain.Habit, error) {
	return s.modify(ctx, id, func(h *domain.Habit) {
		h.Name = in.Name
		h.Description = in.Description
		h.TargetFrequency = in.TargetFrequency
		h.UpdatedAt = domain.NewTimestamp(updatedAt)
	})
}

// UpsertEntry replaces the entry for e.Date.
func (s *Store) UpsertEntry(ctx context.Context, id string, e domain.Entry, updatedAt time.Time) (*domain.Habit, error) {
	return s.modify(ctx, id, func(h *domain.Habit) {
		h.Entries = domain.ReplaceEntry(h.Entries, e)
		h.UpdatedAt = domain.NewTimestamp(updatedAt)
	})
}

// DeleteHabit removes a habit.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.HDel(ctx, s.dataKey(), id)
		p.ZRem(ctx, s.orderKey(), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// modify applies fn to the stored habit under an optimistic WATCH transaction.
func (s *Store) modify(ctx context.Context, id string, fn func(h *domain.Habit)) (*domain.Habit, error) {
	var out *domain.Habit
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, s.dataKey(), id).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		h, err := decode(raw)
		if err != nil {
			return err
		}
		fn(h)
		b, err := json.Marshal(h)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.dataKey(), id, b)
			return nil
		})
		out = h
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, s.dataKey())
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("habit update conflict, retrying", zap.String("id", id), zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("update habit %s: too many concurrent writers", id)
}

func (s *Store) load(ctx context.Context, ids []string) ([]domain.Habit, error) {
	out := make([]domain.Habit, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := s.rdb.HMGet(ctx, s.dataKey(), ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			s.log.Warn("habit in order index without data", zap.String("id", ids[i]))
			continue
		}
		h, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, nil
}

func decode(raw string) (*domain.Habit, error) {
	var h domain.Habit
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil, fmt.Errorf("decode habit: %w", err)
	}
	if h.Entries == nil {
		h.Entries = []domain.Entry{}
	}
	return &h, nil
}
