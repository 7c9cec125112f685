package ports

import "context"

// RuleLoader defines how rule-set documents are retrieved.
// This allows the storage layer (Loam, FS, Memory) to be decoupled from the compiler.
type RuleLoader interface {
	// GetDocument retrieves the raw bytes of a document by ID.
	GetDocument(id string) ([]byte, error)

	// ListDocuments returns the IDs of every available document.
	ListDocuments() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload of rule sets.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying documents change.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
