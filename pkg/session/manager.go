package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sensact/internal/logging"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 5 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// RunFunc performs one run and returns its snapshot. A snapshot returned
// together with an error is still persisted.
type RunFunc func(ctx context.Context) (*domain.Snapshot, error)

// Manager serializes runs per target and stores their snapshots.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager persisting snapshots to store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock entry.mu and call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Execute runs fn while holding the lock of target and saves the snapshot
// it returns. The error of fn takes precedence over a save error.
func (m *Manager) Execute(ctx context.Context, target string, fn RunFunc) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	var runErr error

	err := m.WithLock(ctx, target, func(ctx context.Context) error {
		snap, runErr = fn(ctx)
		if snap == nil || m.store == nil {
			return nil
		}
		// Persist even when ctx was cancelled mid-run.
		if err := m.store.Save(context.WithoutCancel(ctx), snap); err != nil {
			return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
		}
		m.logger.Debug("snapshot saved", "run_id", snap.ID, "target", target, "outcome", snap.Outcome)
		return nil
	})
	if runErr != nil {
		return snap, runErr
	}
	return snap, err
}

// Load retrieves a snapshot.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	if m.store == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return m.store.Load(ctx, id)
}

// Delete removes a snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if m.store == nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// List returns the stored snapshot ids.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if m.store == nil {
		return []string{}, nil
	}
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockAcquire) {
				return err
			}
			return fmt.Errorf("%w: %w", domain.ErrLockAcquire, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"target", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
