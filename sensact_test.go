package sensact_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/internal/testutils"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const editorModel = `
role: desktop
children:
  - role: window
    name: Editor
    handle: "0x2a"
    children:
      - role: menu bar
        children:
          - role: menu item
            name: Format
            collapsed: true
            children:
              - { id: wrap, role: menu item, name: Word Wrap, on_click: { toggle: checked } }
      - { role: edit, name: Text, value: "hello world" }
`

const wrapDoc = `
goal: { wrap_text: { app: Editor } }
rulesets:
  - id: wrap_text
    params: [ { name: app } ]
    rules:
      - id: wrapped
        when: [ { state: { path: "menu item:Word Wrap", has: checked } } ]
        do: [ done ]
      - id: remember
        when: [ { unset: { name: target } } ]
        do: [ { set: { name: target, value: app } } ]
      - id: toggle
        when: [ { exists: { path: "window:$target" } } ]
        do: [ { click: { path: "window:$target/menu item:Format/menu item:Word Wrap" } } ]
      - id: give-up
        when: [ always ]
        do: [ fail ]
  - id: setup
    rules:
      - id: wrap-then-beep
        when: [ always ]
        do: [ { wrap_text: { app: Editor } }, beep, done ]
  - id: spin
    rules:
      - id: forever
        fire_always: true
        when: [ always ]
        do: [ { set: { name: spins, value: "1" } } ]
`

func newTree(t *testing.T) *memory.Tree {
	t.Helper()
	tree, err := memory.LoadTree([]byte(editorModel))
	require.NoError(t, err)
	return tree
}

func newEngine(t *testing.T, opts ...sensact.Option) *sensact.Engine {
	t.Helper()
	opts = append([]sensact.Option{sensact.WithLoader(memory.NewLoader(map[string]string{"editor": wrapDoc}))}, opts...)
	eng, err := sensact.New("", opts...)
	require.NoError(t, err)
	return eng
}

func ruleIDs(snap *domain.Snapshot) []string {
	var ids []string
	for _, f := range snap.Fired {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func TestRun_Done(t *testing.T) {
	eng := newEngine(t)
	tree := newTree(t)

	snap, err := eng.Run(context.Background(), domain.NewRecord("wrap_text", "app", "Editor"), tree.Root)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDone, snap.Outcome)
	assert.Equal(t, []string{"remember", "toggle", "wrapped"}, ruleIDs(snap))
	assert.Equal(t, "Editor", snap.Variables["target"])
	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.FinishedAt.Before(snap.StartedAt))

	wrap, _ := tree.Node("wrap")
	assert.True(t, wrap.HasState(memory.StateChecked))
}

func TestRun_Failed(t *testing.T) {
	eng := newEngine(t)

	snap, err := eng.Run(context.Background(), domain.NewRecord("wrap_text", "app", "Other"), newTree(t).Root)
	require.NoError(t, err, "a failed goal is not an error")

	assert.Equal(t, domain.OutcomeFailed, snap.Outcome)
	assert.Equal(t, []string{"remember", "give-up"}, ruleIDs(snap))
}

func TestRun_DefaultGoal(t *testing.T) {
	eng := newEngine(t)
	require.NotNil(t, eng.Library().DefaultGoal)

	snap, err := eng.Run(context.Background(), nil, newTree(t).Root)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, snap.Outcome)
	assert.Equal(t, "wrap_text", snap.Goal.Kind)
}

func TestRun_NoGoal(t *testing.T) {
	eng := newEngine(t, sensact.WithLoader(memory.NewLoader(map[string]string{
		"one": "id: one\nrules:\n  - id: r\n    when: [ always ]\n    do: [ done ]\n",
	})))

	_, err := eng.Run(context.Background(), nil, newTree(t).Root)
	assert.ErrorIs(t, err, domain.ErrNoGoal)
}

func TestRun_UnknownGoal(t *testing.T) {
	eng := newEngine(t)

	snap, err := eng.Run(context.Background(), domain.NewRecord("print"), newTree(t).Root)
	assert.ErrorIs(t, err, domain.ErrNoRuleSet)
	assert.Nil(t, snap)
}

func TestRun_InitialVariables(t *testing.T) {
	eng := newEngine(t)

	snap, err := eng.Run(context.Background(), domain.NewRecord("wrap_text", "app", "Ignored"), newTree(t).Root,
		sensact.WithInitialVariables(map[string]string{"target": "Editor"}),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, snap.Outcome)
	assert.Equal(t, []string{"toggle", "wrapped"}, ruleIDs(snap))
}

func TestRun_SubGoalAndCustomAction(t *testing.T) {
	var beeps atomic.Int32
	eng := newEngine(t, sensact.WithAction("beep", func(context.Context, *domain.Record) error {
		beeps.Add(1)
		return nil
	}))

	snap, err := eng.Run(context.Background(), domain.NewRecord("setup"), newTree(t).Root)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, snap.Outcome)
	assert.Equal(t, int32(1), beeps.Load())

	require.Len(t, snap.Fired, 4)
	assert.Equal(t, domain.FiredRule{RuleSet: "setup", RuleID: "wrap-then-beep", Tick: 1, Depth: 0}, snap.Fired[0])
	for _, f := range snap.Fired[1:] {
		assert.Equal(t, "wrap_text", f.RuleSet)
		assert.Equal(t, 1, f.Depth)
	}
}

func TestRun_CustomActionFailure(t *testing.T) {
	eng := newEngine(t, sensact.WithAction("beep", func(context.Context, *domain.Record) error {
		return errors.New("speaker unplugged")
	}))

	snap, err := eng.Run(context.Background(), domain.NewRecord("setup"), newTree(t).Root)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, snap.Outcome)
}

func TestRun_TickLimitAborts(t *testing.T) {
	store := memory.NewStore()
	eng := newEngine(t, sensact.WithMaxTicks(5), sensact.WithStore(store))

	snap, err := eng.Run(context.Background(), domain.NewRecord("spin"), newTree(t).Root)
	require.ErrorIs(t, err, domain.ErrTickLimit)
	require.NotNil(t, snap)
	assert.Equal(t, domain.OutcomeAborted, snap.Outcome)
	assert.Len(t, snap.Fired, 5)
	assert.NotEmpty(t, snap.Reason)

	saved, err := store.Load(context.Background(), snap.ID)
	require.NoError(t, err, "aborted runs are persisted too")
	assert.Equal(t, domain.OutcomeAborted, saved.Outcome)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	eng := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := eng.Run(ctx, domain.NewRecord("spin"), newTree(t).Root)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, snap)
	assert.Equal(t, domain.OutcomeAborted, snap.Outcome)
}

func TestRun_PersistsAndHooks(t *testing.T) {
	var enters atomic.Int32
	store := memory.NewStore()
	eng := newEngine(t,
		sensact.WithStore(store),
		sensact.WithLocker(memory.NewLocker()),
		sensact.WithLifecycleHooks(domain.LifecycleHooks{
			OnGoalEnter: func(context.Context, *domain.GoalEvent) { enters.Add(1) },
		}),
	)

	var runHookID string
	snap, err := eng.Run(context.Background(), domain.NewRecord("wrap_text", "app", "Editor"), newTree(t).Root,
		sensact.WithRunID("run-42"),
		sensact.WithRunHooks(domain.LifecycleHooks{
			OnRuleFire: func(_ context.Context, ev *domain.RuleEvent) { runHookID = ev.RunID },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "run-42", snap.ID)
	assert.Equal(t, "run-42", runHookID)
	assert.Equal(t, int32(1), enters.Load())

	saved, err := eng.Sessions().Load(context.Background(), "run-42")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDone, saved.Outcome)
	assert.Equal(t, ruleIDs(snap), ruleIDs(saved))

	ids, err := eng.Sessions().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run-42"}, ids)
}

func TestNew_Directory(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"editor.yaml":      wrapDoc,
		"extra/close.yaml": "id: close\nrules:\n  - id: bye\n    when: [ always ]\n    do: [ done ]\n",
		"broken/dupe.yaml": "id: spin\nrules:\n  - id: r\n    when: [ always ]\n    do: [ done ]\n",
	})

	eng, err := sensact.New(dir)
	require.NoError(t, err)

	assert.True(t, eng.Library().Has("close"))
	assert.Equal(t, 4, eng.Library().Len())
	require.Error(t, eng.Validate(), "the duplicate rule set is reported")
	assert.NotEmpty(t, eng.Diagnostics())
	assert.Len(t, eng.Inspect(), 4)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err, "the directory loader cannot watch")
}

func TestNew_Errors(t *testing.T) {
	_, err := sensact.New("")
	assert.Error(t, err)

	_, err = sensact.New("", sensact.WithLoader(memory.NewLoader(map[string]string{"bad": "[not, a, mapping]"})))
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{"editor.yaml": wrapDoc})

	eng, err := sensact.New(dir)
	require.NoError(t, err)
	require.NoError(t, eng.Validate())
	assert.False(t, eng.Library().Has("close"))

	testutils.WriteFiles(t, dir, map[string]string{
		"close.yaml": "id: close\nrules:\n  - id: bye\n    when: [ always ]\n    do: [ done ]\n",
	})
	require.NoError(t, eng.Reload())
	assert.True(t, eng.Library().Has("close"))

	testutils.WriteFiles(t, dir, map[string]string{"close.yaml": "{ unterminated"})
	require.Error(t, eng.Reload())
	assert.True(t, eng.Library().Has("close"), "a failed reload keeps the previous library")
}
