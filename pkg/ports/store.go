package ports

import (
	"context"

	"github.com/aretw0/sensact/pkg/domain"
)

// SnapshotStore defines the interface for persisting run snapshots.
type SnapshotStore interface {
	// Save persists the snapshot under its ID.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves a snapshot.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored snapshots.
	List(ctx context.Context) ([]string, error)
}
