package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLimiter_AllowsUnderLimit(t *testing.T) {
	client := setupTestRedis(t)
	l := New(client)

	allowed, _, err := l.Allow(context.Background(), "user-1", 3, Limit{PerSecond: 10, PerMinute: 100})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_DeniesOverSecondLimit(t *testing.T) {
	client := setupTestRedis(t)
	l := New(client)
	ctx := context.Background()
	limit := Limit{PerSecond: 5, PerMinute: 1000}

	allowed, _, err := l.Allow(ctx, "user-2", 5, limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, wait, err := l.Allow(ctx, "user-2", 1, limit)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Second, wait)
}

func TestLimiter_DeniesOverMinuteLimit(t *testing.T) {
	client := setupTestRedis(t)
	l := New(client)
	ctx := context.Background()
	limit := Limit{PerSecond: 1000, PerMinute: 5}

	allowed, _, err := l.Allow(ctx, "user-3", 5, limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, wait, err := l.Allow(ctx, "user-3", 1, limit)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestLimiter_DifferentUsersIndependent(t *testing.T) {
	client := setupTestRedis(t)
	l := New(client)
	ctx := context.Background()
	limit := Limit{PerSecond: 1, PerMinute: 10}

	allowed, _, err := l.Allow(ctx, "user-a", 1, limit)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = l.Allow(ctx, "user-b", 1, limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}
