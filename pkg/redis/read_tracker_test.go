package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-cms/config"
)

func TestReadTracker_WithoutRedisCountsEveryRead(t *testing.T) {
	tracker := NewReadTracker(nil, 0)

	for i := 0; i < 3; i++ {
		first, err := tracker.FirstRead(context.Background(), 1, "reader")
		require.NoError(t, err)
		assert.True(t, first)
	}

	var nilTracker *ReadTracker
	first, err := nilTracker.FirstRead(context.Background(), 1, "reader")
	require.NoError(t, err)
	assert.True(t, first)
}

// 需要本地 Redis：REDIS_TEST_ADDR=localhost:6379
func TestReadTracker_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()).Err())

	reader := fmt.Sprintf("test-%d", time.Now().UnixNano())
	tracker := NewReadTracker(c, time.Minute)

	first, err := tracker.FirstRead(context.Background(), 7, reader)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := tracker.FirstRead(context.Background(), 7, reader)
	require.NoError(t, err)
	assert.False(t, again)

	c.Del(context.Background(), ReadKeyPrefix+"7:"+reader)
}

func TestHealthCheck_Disabled(t *testing.T) {
	assert.NoError(t, HealthCheck(context.Background()))
	_, err := InitRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
	assert.Nil(t, GetClient())
}
