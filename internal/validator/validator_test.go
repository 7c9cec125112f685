package validator

import (
	"testing"

	"github.com/aretw0/sensact/internal/compiler"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/registry"
	"github.com/aretw0/sensact/pkg/sensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardKinds() *registry.Registry {
	return sensors.New(nil, nil).Registry()
}

func TestLint(t *testing.T) {
	// 1. Setup
	// smoke -> open_file -> pick; orphan is unreachable
	loader := memory.NewLoader(map[string]string{
		"suite": `
goal: smoke
rulesets:
  - id: smoke
    rules:
      - id: open
        when: [ { absent: "dialog:Open" } ]
        do: [ { open_file: { file: a.txt } } ]
      - id: catch-all
        when: [ always ]
        do: [ done ]
      - id: never
        when: [ { exists: "window:X" } ]
        do: [ fail ]
  - id: open_file
    params: [ { name: file } ]
    rules:
      - id: pick
        when: [ { blink: "menu" } ]
        do: [ pick, teleport ]
  - id: pick
    rules:
      - id: ok
        when: [ always ]
        do: [ { open_file: {} } ]
  - id: orphan
    rules:
      - id: ok
        when: [ always ]
        do: [ done ]
`,
	})
	lib, diags, err := compiler.NewParser().Load(loader)
	require.NoError(t, err)
	require.False(t, compiler.HasErrors(diags))

	// 2. Lint
	issues := Lint(lib, standardKinds())

	var got []string
	for _, i := range issues {
		got = append(got, i.String())
	}
	assert.ElementsMatch(t, []string{
		`warning: smoke/catch-all: fallback rule shadows 1 later rule(s)`,
		`error: open_file/pick: unknown condition kind "blink"`,
		`error: open_file/pick: "teleport" is neither a rule set nor a known action`,
		`error: pick/ok: sub-goal open_file: goal missing required parameter: "open_file" requires "file"`,
		`warning: orphan: unreachable from default goal "smoke"`,
	}, got)

	// 3. Validate only fails on errors
	err = Validate(lib, standardKinds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 3 errors")
}

func TestLint_Clean(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"one": `
goal: { greet: { name: ann } }
rulesets:
  - id: greet
    params: [ { name: name } ]
    rules:
      - id: hello
        when: [ { unset: { name: greeted } } ]
        do: [ { set: { name: greeted, value: name } }, { log: "hi" } ]
      - id: done
        when: [ always ]
        do: [ done ]
`,
	})
	lib, _, err := compiler.NewParser().Load(loader)
	require.NoError(t, err)

	assert.Empty(t, Lint(lib, standardKinds()))
	assert.NoError(t, Validate(lib, standardKinds()))
}

func TestLint_WithoutKinds(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"one": "goal: ghost\nrulesets:\n  - id: a\n    rules:\n      - id: r\n        when: [ { blink: x } ]\n        do: [ teleport ]\n",
	})
	lib, _, err := compiler.NewParser().Load(loader)
	require.NoError(t, err)

	issues := Lint(lib, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, `error: default goal "ghost" has no rule set`, issues[0].String())
}

func TestReachable(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"loop": `
rulesets:
  - id: a
    rules: [ { id: r, when: [ always ], do: [ b ] } ]
  - id: b
    rules: [ { id: r, when: [ always ], do: [ a ] } ]
  - id: c
    rules: [ { id: r, when: [ always ], do: [ done ] } ]
`,
	})
	lib, _, err := compiler.NewParser().Load(loader)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"a": true, "b": true}, Reachable(lib, "a"))
	assert.Empty(t, Reachable(lib, "missing"))
}
