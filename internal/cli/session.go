package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/sensact/pkg/ports"
)

// ListSessions prints the ids of the stored run snapshots.
func ListSessions(ctx context.Context, store ports.SnapshotStore, out io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing runs: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No stored runs found.")
		return nil
	}
	fmt.Fprintln(out, "Stored Runs:")
	for _, id := range ids {
		fmt.Fprintln(out, "- "+id)
	}
	return nil
}

// InspectSession prints a stored snapshot as indented JSON.
func InspectSession(ctx context.Context, store ports.SnapshotStore, id string, out io.Writer) error {
	snap, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading run '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RemoveSessions deletes the given snapshots, reporting each one. It returns
// an error if any removal failed.
func RemoveSessions(ctx context.Context, store ports.SnapshotStore, ids []string, out io.Writer) error {
	failed := 0
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "Removed run '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs could not be removed", failed, len(ids))
	}
	return nil
}
