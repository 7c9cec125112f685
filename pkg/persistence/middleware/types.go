// Package middleware wraps snapshot stores to protect what runs leave behind:
// variables typed into the UI often hold credentials.
package middleware

import "github.com/aretw0/sensact/pkg/ports"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(ports.SnapshotStore) ports.SnapshotStore

// Chain applies middlewares so that the first one sees the snapshot first.
func Chain(store ports.SnapshotStore, mws ...Middleware) ports.SnapshotStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
