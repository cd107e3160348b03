// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, newRedisCache(client, "", zerolog.Nop())
}

func TestRedisCache_SetGet(t *testing.T) {
	_, cache := setupMiniRedis(t)

	cache.Set("test-key", []byte("test-value"), 5*time.Minute)

	val, found := cache.Get("test-key")
	require.True(t, found)
	assert.Equal(t, "test-value", string(val))

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCache_KeysArePrefixed(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	cache.Set("k", []byte("v"), time.Minute)
	assert.True(t, mr.Exists("spotifykit:k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisCache_GetMissing(t *testing.T) {
	_, cache := setupMiniRedis(t)

	val, found := cache.Get("nonexistent")
	assert.False(t, found)
	assert.Nil(t, val)
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestRedisCache_TTL(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	cache.Set("ttl-key", []byte("v"), time.Second)
	_, found := cache.Get("ttl-key")
	require.True(t, found)

	mr.FastForward(2 * time.Second)
	_, found = cache.Get("ttl-key")
	assert.False(t, found)
}

func TestRedisCache_Delete(t *testing.T) {
	_, cache := setupMiniRedis(t)

	cache.Set("delete-key", []byte("v"), time.Minute)
	cache.Delete("delete-key")

	_, found := cache.Get("delete-key")
	assert.False(t, found)
}

func TestRedisCache_ClearOnlyOwnKeys(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	require.NoError(t, mr.Set("foreign", "keep"))
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), []byte("v"), time.Minute)
	}

	cache.Clear()
	assert.Equal(t, 0, cache.Stats().CurrentSize)
	assert.True(t, mr.Exists("foreign"))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, cache := setupMiniRedis(t)

	require.NoError(t, cache.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cache.HealthCheck(context.Background()))
}

func TestNewRedisCache_ConnectionFailure(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewRedisCache_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(RedisConfig{Addr: mr.Addr(), Prefix: "test:"}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", []byte("b"), 0)
	assert.True(t, mr.Exists("test:a"))
}

func TestRedisCache_ConcurrentAccess(t *testing.T) {
	_, cache := setupMiniRedis(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("concurrent-%d", id)
			cache.Set(key, []byte("v"), time.Minute)
			_, _ = cache.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(10), cache.Stats().Sets)
}
