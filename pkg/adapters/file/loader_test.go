package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/sensact/pkg/adapters/file"
	"github.com/aretw0/sensact/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	data := map[string][]byte{
		"open_file":      []byte("id: open_file\n"),
		"menus/format":   []byte("id: format\n"),
		"legacy/reports": []byte(`{"id": "reports"}`),
	}
	write(t, dir, "open_file.yaml", string(data["open_file"]))
	write(t, dir, "menus/format.yml", string(data["menus/format"]))
	write(t, dir, "legacy/reports.json", string(data["legacy/reports"]))
	write(t, dir, "README.md", "not a document")
	write(t, dir, ".hidden/skip.yaml", "id: skip\n")

	tests.RuleLoaderContractTest(t, file.NewLoader(dir), data)
}

func TestFileLoader_RejectsEscapes(t *testing.T) {
	loader := file.NewLoader(t.TempDir())
	_, err := loader.GetDocument("../etc/passwd")
	assert.Error(t, err)
	_, err = loader.GetDocument("")
	assert.Error(t, err)
}

func TestFileLoader_MissingRoot(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "none")).ListDocuments()
	assert.Error(t, err)
}
