// Package loam loads rule-set documents from a Loam repository.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
)

// WatchPattern selects the files whose changes trigger a reload.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader adapts a Loam repository to ports.RuleLoader and ports.Watchable.
type Loader struct {
	Repo *loam.TypedRepository[RuleSetMetadata]
}

// New creates a Loam adapter.
func New(repo *loam.TypedRepository[RuleSetMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetDocument returns the metadata of document id re-encoded as JSON, ready
// for the compiler. A single rule set without an explicit id takes the
// document id; a markdown body becomes its description.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	meta := doc.Data
	meta.Goal = normalize(meta.Goal)
	meta.Params = normalize(meta.Params)
	meta.Rules = normalizeAll(meta.Rules)
	meta.RuleSets = normalizeAll(meta.RuleSets)

	if !meta.IsBundle() {
		if meta.ID == "" {
			meta.ID = trimExtension(doc.ID)
		}
		if meta.Description == "" {
			meta.Description = strings.TrimSpace(doc.Content)
		}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", id, err)
	}
	return data, nil
}

// ListDocuments lists every document of the repository by extension-less id.
func (l *Loader) ListDocuments() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

// Watch implements ports.Watchable. Bursts of file events are coalesced
// into a single pending signal.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}
