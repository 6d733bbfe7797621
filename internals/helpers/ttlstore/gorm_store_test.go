package ttlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_backend/internals/helpers/ttlstore"
	"library_backend/internals/testutil"
)

func newStore(t *testing.T) (*ttlstore.GormStore, *testutil.Clock) {
	clock := testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := ttlstore.NewGormStore(testutil.NewDB(t))
	store.Now = clock.Now
	return store, clock
}

func TestGormStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore(t)

	require.NoError(t, store.Set(ctx, "pwreset:abc", "user-1", time.Hour))

	v, err := store.Get(ctx, "pwreset:abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", v)

	clock.Advance(2 * time.Hour)
	_, err = store.Get(ctx, "pwreset:abc")
	assert.ErrorIs(t, err, ttlstore.ErrNotFound)
}

func TestGormStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.Set(ctx, "k", "one", time.Minute))
	require.NoError(t, store.Set(ctx, "k", "two", time.Minute))

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestGormStore_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	v, err := store.Take(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = store.Take(ctx, "k")
	assert.ErrorIs(t, err, ttlstore.ErrNotFound)
}

func TestGormStore_RejectsNonPositiveTTL(t *testing.T) {
	store, _ := newStore(t)
	assert.Error(t, store.Set(context.Background(), "k", "v", 0))
}

func TestGormStore_Purge(t *testing.T) {
	ctx := context.Background()
	store, clock := newStore(t)

	require.NoError(t, store.Set(ctx, "short", "a", time.Minute))
	require.NoError(t, store.Set(ctx, "long", "b", time.Hour))

	clock.Advance(10 * time.Minute)
	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	v, err := store.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	n, err = store.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
