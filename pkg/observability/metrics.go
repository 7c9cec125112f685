package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	RuleFires    *prometheus.CounterVec
	Goals        *prometheus.CounterVec
	GoalDuration *prometheus.HistogramVec
	Actions      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RuleFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensact_rule_fires_total",
				Help: "Total number of rule firings",
			},
			[]string{"ruleset", "rule"},
		),
		Goals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensact_goals_total",
				Help: "Goals finished, by outcome",
			},
			[]string{"ruleset", "outcome"},
		),
		GoalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensact_goal_duration_seconds",
				Help:    "Duration of goal runs, sub-goals included",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"ruleset"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensact_actions_total",
				Help: "Actions executed, by kind and result",
			},
			[]string{"kind", "ok"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.RuleFires, m.Goals, m.GoalDuration, m.Actions)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalLeave: func(_ context.Context, e *domain.GoalEvent) {
			outcome := "success"
			switch {
			case e.Err != "":
				outcome = "error"
			case !e.Success:
				outcome = "failure"
			}
			m.Goals.WithLabelValues(e.RuleSet, outcome).Inc()
			m.GoalDuration.WithLabelValues(e.RuleSet).Observe(e.Duration.Seconds())
		},
		OnRuleFire: func(_ context.Context, e *domain.RuleEvent) {
			m.RuleFires.WithLabelValues(e.RuleSet, e.RuleID).Inc()
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			kind := ""
			if e.Action != nil {
				kind = e.Action.Kind
			}
			m.Actions.WithLabelValues(kind, strconv.FormatBool(e.OK)).Inc()
		},
	}
}
