package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"habits/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	prefix := "habits-test-" + uuid.NewString()
	s, err := Open(context.Background(), Options{Addr: addr, Prefix: prefix}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.rdb.Del(ctx, s.dataKey(), s.orderKey(), s.seqKey()).Err()
		_ = s.Close()
	})
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := s.CreateHabit(ctx, domain.Habit{ID: "a", Name: "Read", TargetFrequency: 5})
	require.NoError(t, err)
	_, err = s.CreateHabit(ctx, domain.Habit{ID: "b", Name: "Run", TargetFrequency: 3})
	require.NoError(t, err)

	all, err := s.ListHabits(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	_, err = s.UpsertEntry(ctx, "a", domain.Entry{Date: "2026-02-08", Completed: true}, now)
	require.NoError(t, err)
	h, err := s.UpsertEntry(ctx, "a", domain.Entry{Date: "2026-02-08", Completed: false}, now)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.False(t, h.Entries[0].Completed)

	found, err := s.SearchHabits(ctx, "ru")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "b", found[0].ID)

	require.NoError(t, s.DeleteHabit(ctx, "a"))
	assert.True(t, errors.Is(s.DeleteHabit(ctx, "a"), domain.ErrNotFound))
	_, err = s.GetHabit(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNew_DefaultPrefix(t *testing.T) {
	s := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "", nil)
	defer s.Close() //nolint:errcheck
	assert.Equal(t, "habits:data", s.dataKey())
	assert.Equal(t, "habits:order", s.orderKey())
}

func TestDecode(t *testing.T) {
	h, err := decode(`{"id":"x","name":"Read","targetFrequency":2,"entries":null}`)
	require.NoError(t, err)
	assert.NotNil(t, h.Entries)

	_, err = decode(`{not json`)
	assert.Error(t, err)
}
