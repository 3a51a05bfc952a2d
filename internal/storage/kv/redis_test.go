package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ""), mr
}

func TestRedisStore_GetSet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "products")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("writes under the prefix", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "products", []byte(`[]`), 0))

		raw, err := mr.Get("harvest:products")
		require.NoError(t, err)
		assert.Equal(t, `[]`, raw)

		got, err := store.Get(ctx, "products")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("ttl expires the value", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "session:a:user", []byte(`{}`), time.Minute))
		mr.FastForward(2 * time.Minute)

		_, err := store.Get(ctx, "session:a:user")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRedisStore_SetManyAndDelete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	err := store.SetMany(ctx, map[string][]byte{
		"buyers":  []byte(`[{"id":"buyer-1"}]`),
		"sellers": []byte(`[{"id":"seller-1"}]`),
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("harvest:buyers"))
	assert.True(t, mr.Exists("harvest:sellers"))

	require.NoError(t, store.Delete(ctx, "buyers"))
	assert.False(t, mr.Exists("harvest:buyers"))

	assert.NoError(t, store.SetMany(ctx, nil))
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "tenant-a:")
	require.NoError(t, store.Set(context.Background(), "user", []byte(`{}`), 0))
	assert.True(t, mr.Exists("tenant-a:user"))
}
