package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v1"), 0))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	// returned slices are copies
	got[0] = 'x'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "v1", string(again))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "cart", []byte("{}"), time.Hour))

	now = now.Add(59 * time.Minute)
	_, err := store.Get(ctx, "cart")
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Keys())
}

func TestMemory_ExpiredReadKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "session", []byte("old"), time.Minute))
	now = now.Add(2 * time.Minute)

	// the fresh write lands between Get's read and its expiry cleanup
	rewritten := false
	store.now = func() time.Time {
		if !rewritten {
			rewritten = true
			require.NoError(t, store.Set(ctx, "session", []byte("fresh"), time.Hour))
		}
		return now
	}

	got, err := store.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))

	got, err = store.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
	assert.Equal(t, 1, store.Keys())
}
