package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Scalars(t *testing.T) {
	s := New()
	_, ok := s.Get("app")
	assert.False(t, ok, "absent lookups are not errors")

	s.Set("app", "Notepad")
	v, ok := s.Get("app")
	require.True(t, ok)
	assert.Equal(t, "Notepad", v)

	s.Set("app", "")
	_, ok = s.Get("app")
	assert.False(t, ok)
}

func TestStore_Dotted(t *testing.T) {
	s := New()
	s.SetDotted("row", "index", "2")
	s.SetDotted("row", "name", "a.txt")

	v, ok := s.GetDotted("row", "index")
	require.True(t, ok)
	assert.Equal(t, "2", v)

	s.SetDotted("row", "index", "")
	_, ok = s.GetDotted("row", "index")
	assert.False(t, ok, "empty value removes the sub-field")
	v, ok = s.GetDotted("row", "name")
	assert.True(t, ok, "container survives sub-field removal")
	assert.Equal(t, "a.txt", v)

	s.Set("row", "whole")
	v, _ = s.GetDotted("row", "")
	assert.Equal(t, "whole", v, "empty field reads the scalar")

	s.Unset("row")
	_, ok = s.GetDotted("row", "name")
	assert.False(t, ok)
}

func TestStore_Nodes(t *testing.T) {
	s := New()
	assert.False(t, s.SetMark("n", "tested"))

	s.BindNode("n", nil, "")
	assert.True(t, s.SetMark("n", "tested"))
	b, ok := s.GetNode("n")
	require.True(t, ok)
	assert.Equal(t, "tested", b.Mark)
	assert.Equal(t, []string{"n"}, s.Nodes())
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := New()
	s.Set("app", "Notepad")
	s.SetDotted("row", "index", "3")

	snap := s.Snapshot()
	assert.Equal(t, map[string]string{"app": "Notepad", "row.index": "3"}, snap)

	r := New()
	r.Restore(snap)
	v, _ := r.GetDotted("row", "index")
	assert.Equal(t, "3", v)
	assert.Equal(t, snap, r.Snapshot())
}

func TestStore_Tree(t *testing.T) {
	s := New()
	s.Set("app", "Notepad")
	s.SetDotted("row", "index", "3")

	tree := s.Tree()
	vars := tree["vars"].(map[string]any)
	assert.Equal(t, "Notepad", vars["app"])
	assert.Equal(t, map[string]any{"index": "3"}, vars["row"])
}
