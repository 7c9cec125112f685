package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoal(t *testing.T) {
	goal, err := ParseGoal([]string{"open_file", "name=notes.txt", "dir=C:=root"})
	require.NoError(t, err)
	assert.Equal(t, "open_file", goal.Kind)
	assert.Equal(t, "notes.txt", goal.Value("name"))
	assert.Equal(t, "C:=root", goal.Value("dir"))
	assert.Equal(t, []string{"name", "dir"}, goal.Names())

	goal, err = ParseGoal(nil)
	require.NoError(t, err)
	assert.Nil(t, goal)

	_, err = ParseGoal([]string{"name=x"})
	assert.Error(t, err)

	_, err = ParseGoal([]string{"open_file", "name"})
	assert.Error(t, err)
}

func TestParseVars(t *testing.T) {
	vars, err := ParseVars([]string{"target=Editor", "row.index=3", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"target": "Editor", "row.index": "3", "empty": ""}, vars)

	_, err = ParseVars([]string{"=x"})
	assert.Error(t, err)
}
