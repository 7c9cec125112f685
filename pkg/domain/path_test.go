package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	head, err := ParsePath("window:Notepad/menu bar:/2menu item:File//Save/0@row list item:a.txt/Cancel", ModeIndexed)
	require.NoError(t, err)

	steps := head.Steps()
	require.Len(t, steps, 5)

	assert.Equal(t, PathStep{Name: "Notepad", Role: "window", Occurrence: 1}, stripLinks(steps[0]))
	assert.Equal(t, PathStep{Name: "", Role: "menu bar", Occurrence: 1}, stripLinks(steps[1]))
	assert.Equal(t, PathStep{Name: "File/Save", Role: "menu item", Occurrence: 2}, stripLinks(steps[2]))
	assert.Equal(t, PathStep{Name: "a.txt", Role: "list item", Occurrence: 0, VarID: "row"}, stripLinks(steps[3]))
	assert.Equal(t, PathStep{Name: "Cancel", Role: RoleNone, Occurrence: 1}, stripLinks(steps[4]))

	assert.Nil(t, steps[0].Prev)
	assert.Same(t, steps[3], steps[4].Prev)
	assert.True(t, steps[4].IsTerminal())
	assert.Same(t, steps[4], head.Last())
}

func TestParsePath_DepthFirst(t *testing.T) {
	head, err := ParsePath("window:A/3button:B", ModeDepthFirst)
	require.NoError(t, err)
	for _, s := range head.Steps() {
		assert.Equal(t, -1, s.Occurrence)
	}
}

func TestParsePath_Errors(t *testing.T) {
	for _, text := range []string{"", "/", "2@v button:x", "0@ button:x"} {
		_, err := ParsePath(text, ModeIndexed)
		assert.Error(t, err, text)
	}
}

func TestPathStep_StringRoundTrip(t *testing.T) {
	text := "window:Notepad/2menu item:a//b/0@row list item:x/Cancel"
	head, err := ParsePath(text, ModeIndexed)
	require.NoError(t, err)
	assert.Equal(t, text, head.String())
}

func stripLinks(s *PathStep) PathStep {
	c := *s
	c.Next, c.Prev = nil, nil
	return c
}
