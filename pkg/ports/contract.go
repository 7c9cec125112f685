package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string) *domain.Snapshot {
		started := time.Now().UTC().Truncate(time.Millisecond)
		return &domain.Snapshot{
			ID:        id,
			Goal:      domain.NewRecord("open_file", "file", "notes.txt"),
			Outcome:   domain.OutcomeDone,
			Variables: map[string]string{"app": "Notepad", "row.index": "2"},
			Fired: []domain.FiredRule{
				{RuleSet: "open_file", RuleID: "open-menu", Tick: 1},
				{RuleSet: "open_file", RuleID: "finished", Tick: 2},
			},
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Save
		snap := newSnapshot(runID)
		err := store.Save(ctx, snap)
		require.NoError(t, err, "Save should not return error")

		// 2. Load
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.ID, loaded.ID)
		assert.Equal(t, domain.OutcomeDone, loaded.Outcome)
		assert.True(t, snap.Goal.Equal(loaded.Goal), "goal record should survive persistence")
		assert.Equal(t, "Notepad", loaded.Variables["app"])
		require.Len(t, loaded.Fired, 2)
		assert.Equal(t, "finished", loaded.Fired[1].RuleID)
		assert.True(t, snap.StartedAt.Equal(loaded.StartedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newSnapshot(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Delete of a missing snapshot should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, newSnapshot(id1)))
		require.NoError(t, store.Save(ctx, newSnapshot(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
