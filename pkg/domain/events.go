package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGoalEnter EventType = "goal_enter"
	EventGoalLeave EventType = "goal_leave"
	EventRuleFire  EventType = "rule_fire"
	EventAction    EventType = "action"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Depth     int       `json:"depth"` // sub-goal nesting level, 0 for the top-level goal
}

// GoalEvent represents entry into or exit from a goal.
type GoalEvent struct {
	EventBase
	RuleSet  string        `json:"ruleset"`
	Goal     *Record       `json:"goal,omitempty"`
	Success  bool          `json:"success,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// RuleEvent represents a rule firing.
type RuleEvent struct {
	EventBase
	RuleSet string `json:"ruleset"`
	RuleID  string `json:"rule_id"`
	Tick    int    `json:"tick"`
}

// ActionEvent represents the execution of one action of a fired rule.
type ActionEvent struct {
	EventBase
	RuleSet string  `json:"ruleset"`
	RuleID  string  `json:"rule_id"`
	Action  *Record `json:"action"`
	OK      bool    `json:"ok"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnGoalEnter func(context.Context, *GoalEvent)
	OnGoalLeave func(context.Context, *GoalEvent)
	OnRuleFire  func(context.Context, *RuleEvent)
	OnAction    func(context.Context, *ActionEvent)
}

// Merge returns hooks invoking h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGoalEnter: chain(h.OnGoalEnter, other.OnGoalEnter),
		OnGoalLeave: chain(h.OnGoalLeave, other.OnGoalLeave),
		OnRuleFire:  chain(h.OnRuleFire, other.OnRuleFire),
		OnAction:    chain(h.OnAction, other.OnAction),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
