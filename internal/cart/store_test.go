package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, time.Hour)
	ctx := context.Background()
	session := SessionKey(5)

	c, err := store.Load(ctx, session)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.NoError(t, store.Save(ctx, session, Cart{7: 2}))
	assert.True(t, mr.Exists("cart:user:5"))
	assert.Equal(t, time.Hour, mr.TTL("cart:user:5"))

	c, err = store.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, Cart{7: 2}, c)

	require.NoError(t, store.Save(ctx, session, New()))
	assert.False(t, mr.Exists("cart:user:5"), "saving an empty cart deletes the key")
}

func TestRedisStoreLoadRefreshesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, time.Hour)
	ctx := context.Background()
	session := SessionKey(5)

	require.NoError(t, store.Save(ctx, session, Cart{7: 2}))
	mr.FastForward(50 * time.Minute)
	assert.Equal(t, 10*time.Minute, mr.TTL("cart:user:5"))

	c, err := store.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, Cart{7: 2}, c)
	assert.Equal(t, time.Hour, mr.TTL("cart:user:5"))

	mr.FastForward(50 * time.Minute)
	c, err = store.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, Cart{7: 2}, c, "a cart read within the TTL stays alive")
}

func TestRedisStoreBackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, time.Hour)
	mr.Close()

	_, err := store.Load(context.Background(), SessionKey(1))
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", Cart{1: 3}))
	c, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Cart{1: 3}, c)

	c.Add(1)
	again, _ := store.Load(ctx, "a")
	assert.Equal(t, 3, again.Quantity(1), "loaded carts are copies")

	require.NoError(t, store.Clear(ctx, "a"))
	c, err = store.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
