package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sensact/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	// 1. Acquire
	unlock, err := locker.Lock(ctx, "notepad", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:notepad"))

	// 2. Release
	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:notepad"))
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	// 1. First holder
	unlock1, err := first.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	// 2. Second blocks until its context times out
	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = second.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(300*time.Millisecond), time.Now(), 150*time.Millisecond)

	// 3. Release and retry
	require.NoError(t, unlock1(ctx))
	unlock2, err := second.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)
	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "app", time.Second)
	require.NoError(t, err)

	// The first lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "app", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:app"), "stale unlock must not release the new holder")
	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("test:lock:app"))
}
