package memory

import (
	"fmt"
	"sort"
)

// Loader implements ports.RuleLoader using an in-memory map of documents.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a loader over raw rule-set documents keyed by ID.
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte, len(data))
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{docs: docs}
}

// GetDocument retrieves a document by ID.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	content, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return content, nil
}

// ListDocuments returns all document IDs in lexical order.
func (l *Loader) ListDocuments() ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
