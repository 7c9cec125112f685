package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/sensact/internal/runtime"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	actor := new(MockActor)
	actor.On("Act", mock.Anything).Return(true)

	lib := library(t,
		&domain.RuleSet{Name: "outer", Rules: []*domain.Rule{
			rule("delegate", always(), rec("inner"), rec(domain.ActionDone)),
		}},
		&domain.RuleSet{Name: "inner", Rules: []*domain.Rule{
			rule("work", always(), rec("poke"), rec(domain.ActionDone)),
		}},
	)

	var entered, left, fired, actions []string
	var depths []int
	hooks := domain.LifecycleHooks{
		OnGoalEnter: func(ctx context.Context, e *domain.GoalEvent) {
			entered = append(entered, e.RuleSet)
			depths = append(depths, e.Depth)
		},
		OnGoalLeave: func(ctx context.Context, e *domain.GoalEvent) {
			assert.True(t, e.Success)
			left = append(left, e.RuleSet)
		},
		OnRuleFire: func(ctx context.Context, e *domain.RuleEvent) {
			assert.Equal(t, "run-1", e.RunID)
			fired = append(fired, e.RuleSet+"/"+e.RuleID)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			actions = append(actions, e.Action.Kind)
		},
	}

	e := runtime.NewEngine(lib, new(MockSensor), actor,
		runtime.WithLifecycleHooks(hooks),
		runtime.WithRunID("run-1"),
	)
	require.NoError(t, e.SetGoal(context.Background(), rec("outer")))
	ok, err := e.Run(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"outer", "inner"}, entered)
	assert.Equal(t, []int{0, 1}, depths)
	assert.Equal(t, []string{"inner", "outer"}, left)
	assert.Equal(t, []string{"outer/delegate", "inner/work"}, fired)
	assert.Equal(t, []string{"poke", "done", "inner", "done"}, actions)
}
