package runtime

import (
	"context"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     e.runID,
		Depth:     e.depth,
	}
}

func (e *Engine) emitGoalEnter(ctx context.Context) {
	e.logger.DebugContext(ctx, "goal enter", "ruleset", e.ruleSet.Name, "goal", e.goal.String(), "depth", e.depth)
	if e.hooks.OnGoalEnter == nil {
		return
	}
	e.hooks.OnGoalEnter(ctx, &domain.GoalEvent{
		EventBase: e.base(domain.EventGoalEnter),
		RuleSet:   e.ruleSet.Name,
		Goal:      e.goal,
	})
}

func (e *Engine) emitGoalLeave(ctx context.Context, ok bool, err error, d time.Duration) {
	e.logger.DebugContext(ctx, "goal leave", "ruleset", e.ruleSet.Name, "success", ok, "duration", d, "err", err)
	if e.hooks.OnGoalLeave == nil {
		return
	}
	evt := &domain.GoalEvent{
		EventBase: e.base(domain.EventGoalLeave),
		RuleSet:   e.ruleSet.Name,
		Goal:      e.goal,
		Success:   ok,
		Duration:  d,
	}
	if err != nil {
		evt.Err = err.Error()
	}
	e.hooks.OnGoalLeave(ctx, evt)
}

func (e *Engine) emitRuleFire(ctx context.Context, rule *domain.Rule, tick int) {
	e.logger.DebugContext(ctx, "rule fired", "ruleset", e.ruleSet.Name, "rule", rule.ID, "tick", tick)
	if e.hooks.OnRuleFire == nil {
		return
	}
	e.hooks.OnRuleFire(ctx, &domain.RuleEvent{
		EventBase: e.base(domain.EventRuleFire),
		RuleSet:   e.ruleSet.Name,
		RuleID:    rule.ID,
		Tick:      tick,
	})
}

func (e *Engine) emitAction(ctx context.Context, rule *domain.Rule, action *domain.Record, ok bool) {
	if e.hooks.OnAction == nil {
		return
	}
	e.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: e.base(domain.EventAction),
		RuleSet:   e.ruleSet.Name,
		RuleID:    rule.ID,
		Action:    action,
		OK:        ok,
	})
}
