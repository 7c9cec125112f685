package middleware

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// Mask replaces sensitive values in stored snapshots.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks run variables and goal
// attributes whose names match any of the patterns.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	// The engine still holds snap; mask a copy.
	cloned := *snap
	cloned.Variables = maps.Clone(snap.Variables)
	for name := range cloned.Variables {
		if m.sensitive(name) {
			cloned.Variables[name] = Mask
		}
	}
	if snap.Goal != nil {
		cloned.Goal = snap.Goal.Clone()
		for _, name := range cloned.Goal.Names() {
			if m.sensitive(name) {
				cloned.Goal.Set(name, Mask)
			}
		}
	}
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) sensitive(name string) bool {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
