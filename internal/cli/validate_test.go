package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	dir, _ := setupProject(t)
	var out bytes.Buffer

	require.NoError(t, Validate(Options{Dir: dir}, &out))

	broken := `
id: broken
rules:
  - id: typo
    when: [ { exsts: { path: "x" } } ]
    do: [ done ]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0o644))

	out.Reset()
	err := Validate(Options{Dir: dir}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "exsts")
}

func TestGraph(t *testing.T) {
	dir, model := setupProject(t)
	opts := Options{Dir: dir, Store: StoreMemory}
	var out bytes.Buffer

	require.NoError(t, Graph(context.Background(), opts, "", &out))
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "switch_on")

	// A run stored in the file store can be overlaid.
	opts.Store = StoreFile
	require.NoError(t, Execute(context.Background(), RunOptions{Options: opts, Model: model, JSON: true}, &out))
	ids, err := filepathRuns(dir)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	out.Reset()
	require.NoError(t, Graph(context.Background(), opts, ids[0], &out))
	assert.Contains(t, out.String(), "class switch_on current")

	assert.Error(t, Graph(context.Background(), opts, "missing", &out))
}

func filepathRuns(dir string) ([]string, error) {
	store, _, _, err := OpenStore(Options{Dir: dir, Store: StoreFile})
	if err != nil {
		return nil, err
	}
	return store.List(context.Background())
}
