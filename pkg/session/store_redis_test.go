package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStore_CreateGetDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	sess := testSession("r1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "r1@example.com", got.Email())

	require.NoError(t, store.Delete(ctx, "r1"))
	_, err = store.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_TTLMatchesExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("r2", time.Now().Add(time.Hour))))

	ttl := mr.TTL(redisKeyPrefix + "r2")
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestRedisStore_ExpiredKeyIsNotFound(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("r3", time.Now().Add(time.Minute))))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "r3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CreateAlreadyExpired(t *testing.T) {
	store, _ := newTestRedisStore(t)

	err := store.Create(context.Background(), testSession("r4", time.Now().Add(-time.Minute)))
	assert.Error(t, err)
}

func TestRedisStore_UndecodablePayloadDropped(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set(redisKeyPrefix+"junk", "{not json"))

	_, err := store.Get(context.Background(), "junk")
	assert.ErrorIs(t, err, ErrNotFound)
	// The broken key was deleted
	assert.False(t, mr.Exists(redisKeyPrefix+"junk"))
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", nil)
	assert.Error(t, err)
}
