package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/sensact/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

// Save keeps a copy of the snapshot.
func (s *Store) Save(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.ID] = copySnapshot(snap)
	return nil
}

// Load returns a copy so callers cannot mutate the stored snapshot.
func (s *Store) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return copySnapshot(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copySnapshot(src *domain.Snapshot) *domain.Snapshot {
	dst := *src
	dst.Goal = src.Goal.Clone()
	dst.Variables = maps.Clone(src.Variables)
	dst.Fired = append([]domain.FiredRule(nil), src.Fired...)
	return &dst
}
