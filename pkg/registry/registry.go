// Package registry maps record kinds to condition and action implementations.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/sensact/pkg/domain"
)

// ErrUnknownKind is returned for a record kind nothing is registered for.
var ErrUnknownKind = errors.New("unknown record kind")

// SenseFunc evaluates a condition record.
type SenseFunc func(ctx context.Context, cond *domain.Record) (bool, error)

// ActFunc executes an action record.
type ActFunc func(ctx context.Context, action *domain.Record) error

// Registry manages the available conditions and actions.
type Registry struct {
	mu         sync.RWMutex
	conditions map[string]SenseFunc
	actions    map[string]ActFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]SenseFunc),
		actions:    make(map[string]ActFunc),
	}
}

// RegisterCondition adds a condition kind, overwriting any previous one.
func (r *Registry) RegisterCondition(kind string, fn SenseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[kind] = fn
}

// RegisterAction adds an action kind, overwriting any previous one.
func (r *Registry) RegisterAction(kind string, fn ActFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[kind] = fn
}

// Sense evaluates cond with the function registered for its kind.
func (r *Registry) Sense(ctx context.Context, cond *domain.Record) (bool, error) {
	r.mu.RLock()
	fn, ok := r.conditions[cond.Kind]
	r.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("%w: condition %q", ErrUnknownKind, cond.Kind)
	}
	return fn(ctx, cond)
}

// Act executes action with the function registered for its kind.
func (r *Registry) Act(ctx context.Context, action *domain.Record) error {
	r.mu.RLock()
	fn, ok := r.actions[action.Kind]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: action %q", ErrUnknownKind, action.Kind)
	}
	return fn(ctx, action)
}

// HasCondition reports whether kind is a registered condition.
func (r *Registry) HasCondition(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conditions[kind]
	return ok
}

// HasAction reports whether kind is a registered action.
func (r *Registry) HasAction(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[kind]
	return ok
}

// Conditions lists the registered condition kinds in lexical order.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.conditions)
}

// Actions lists the registered action kinds in lexical order.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.actions)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
