package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, &domain.Snapshot{ID: "r1", Variables: map[string]string{"a": "1"}}))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	loaded.Variables["a"] = "changed"

	again, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "1", again.Variables["a"])
}

func TestLocker_Serializes(t *testing.T) {
	ctx := context.Background()
	locker := memory.NewLocker()

	unlock, err := locker.Lock(ctx, "notepad", time.Minute)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "notepad", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "second holder must wait")

	require.NoError(t, unlock(ctx))
	unlock2, err := locker.Lock(ctx, "notepad", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_TTLExpires(t *testing.T) {
	ctx := context.Background()
	locker := memory.NewLocker()

	_, err := locker.Lock(ctx, "calc", 20*time.Millisecond)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := locker.Lock(waitCtx, "calc", time.Minute)
	require.NoError(t, err, "expired lock should be reclaimable")
	require.NoError(t, unlock(ctx))
}
