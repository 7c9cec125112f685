package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the document extensions recognised by Loader, in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.RuleLoader over a directory tree.
// Document ids are slash-separated paths relative to the root, without extension.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{root: dir}
}

// Root returns the directory the loader reads from.
func (l *Loader) Root() string { return l.root }

// GetDocument reads the document with the given id, trying each extension.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(id))
	if id == "" || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid document id %q", id)
	}
	for _, ext := range Extensions {
		data, err := os.ReadFile(filepath.Join(l.root, clean+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read document %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("document not found: %s", id)
}

// ListDocuments walks the root and returns every document id in lexical order.
// Hidden files and directories are skipped.
func (l *Loader) ListDocuments() ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != l.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isDocument(name) {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isDocument(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
