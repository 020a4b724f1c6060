package distlock

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

func TestSlotLock_AcquireUpToN(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewSlotLock(client, "user-1", 2)
	b := NewSlotLock(client, "user-1", 2)
	c := NewSlotLock(client, "user-1", 2)

	require.NoError(t, a.Acquire(ctx, 6*time.Second))
	require.NoError(t, b.Acquire(ctx, 6*time.Second))

	err := c.Acquire(ctx, 6*time.Second)
	assert.ErrorIs(t, err, ErrNoSlotAvailable)
}

func TestSlotLock_ReleaseFreesSlot(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewSlotLock(client, "user-2", 1)
	require.NoError(t, a.Acquire(ctx, 6*time.Second))

	b := NewSlotLock(client, "user-2", 1)
	assert.ErrorIs(t, b.Acquire(ctx, 6*time.Second), ErrNoSlotAvailable)

	require.NoError(t, a.Release(ctx))

	assert.NoError(t, b.Acquire(ctx, 6*time.Second))
}

func TestSlotLock_DifferentUsersIndependent(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewSlotLock(client, "user-a", 1)
	b := NewSlotLock(client, "user-b", 1)

	require.NoError(t, a.Acquire(ctx, 6*time.Second))
	require.NoError(t, b.Acquire(ctx, 6*time.Second))
}

func TestSlotLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewSlotLock(client, "user-3", 2)
	assert.NoError(t, a.Release(ctx))
}
