package tests

import (
	"testing"

	"github.com/aretw0/sensact/pkg/ports"
)

// RuleLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.RuleLoader.
func RuleLoaderContractTest(t *testing.T, loader ports.RuleLoader, setupData map[string][]byte) {
	t.Helper()

	// 1. GetDocument (Success)
	t.Run("GetDocument_Success", func(t *testing.T) {
		for id, expected := range setupData {
			content, err := loader.GetDocument(id)
			if err != nil {
				t.Fatalf("unexpected error getting document %s: %v", id, err)
			}
			if string(content) != string(expected) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expected)
			}
		}
	})

	// 2. GetDocument (NotFound)
	t.Run("GetDocument_NotFound", func(t *testing.T) {
		if _, err := loader.GetDocument("non-existent-document"); err == nil {
			t.Error("expected error for non-existent document, got nil")
		}
	})

	// 3. ListDocuments
	t.Run("ListDocuments", func(t *testing.T) {
		ids, err := loader.ListDocuments()
		if err != nil {
			t.Fatalf("unexpected error listing documents: %v", err)
		}
		if len(ids) != len(setupData) {
			t.Errorf("expected %d documents, got %d", len(setupData), len(ids))
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}
		for id := range setupData {
			if !seen[id] {
				t.Errorf("document %s missing from list", id)
			}
		}
	})
}
