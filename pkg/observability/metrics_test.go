package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnRuleFire(ctx, &domain.RuleEvent{RuleSet: "open_file", RuleID: "click-menu"})
	hooks.OnRuleFire(ctx, &domain.RuleEvent{RuleSet: "open_file", RuleID: "click-menu"})
	hooks.OnAction(ctx, &domain.ActionEvent{Action: domain.NewRecord("click"), OK: true})
	hooks.OnAction(ctx, &domain.ActionEvent{Action: domain.NewRecord("click"), OK: false})
	hooks.OnGoalLeave(ctx, &domain.GoalEvent{RuleSet: "open_file", Success: true, Duration: time.Second})
	hooks.OnGoalLeave(ctx, &domain.GoalEvent{RuleSet: "open_file", Err: "tick limit"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RuleFires.WithLabelValues("open_file", "click-menu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("click", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("click", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Goals.WithLabelValues("open_file", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Goals.WithLabelValues("open_file", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GoalDuration))

	count, err := testutil.GatherAndCount(reg, "sensact_rule_fires_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Unregistered(t *testing.T) {
	m := observability.NewMetrics(nil)
	assert.NotPanics(t, func() {
		m.Hooks().OnGoalLeave(context.Background(), &domain.GoalEvent{RuleSet: "x"})
	})
}
