package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/variables"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/sensact/internal/runtime"

// State is the position of an Engine in its goal life cycle.
type State int

const (
	StateIdle State = iota
	StateSelectingRuleSet
	StateEvaluating
	StateFiring
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSelectingRuleSet:
		return "selecting"
	case StateEvaluating:
		return "evaluating"
	case StateFiring:
		return "firing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Engine drives one goal. Engines are not safe for concurrent use; each
// sub-goal gets its own Engine sharing the library, collaborators and
// variables of its parent but none of its firing history.
type Engine struct {
	library *domain.Library
	sensor  ports.Sensor
	actor   ports.Actor
	vars    *variables.Store

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	tracer   trace.Tracer
	maxTicks int
	timeout  time.Duration
	poll     time.Duration
	runID    string
	depth    int

	state     State
	goal      *domain.Record
	ruleSet   *domain.RuleSet
	subs      domain.Substitutions
	lastFired *domain.Rule
	goalErr   error
}

// NewEngine creates an engine over a shared, read-only library.
func NewEngine(library *domain.Library, sensor ports.Sensor, actor ports.Actor, opts ...Option) *Engine {
	e := &Engine{
		library: library,
		sensor:  sensor,
		actor:   actor,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current life-cycle state.
func (e *Engine) State() State { return e.state }

// Goal returns the goal set by SetGoal.
func (e *Engine) Goal() *domain.Record { return e.goal }

// RuleSet returns the rule set bound to the goal, if any.
func (e *Engine) RuleSet() *domain.RuleSet { return e.ruleSet }

// SetGoal selects the rule set named by the goal kind, binds its parameters
// and resets the firing history.
func (e *Engine) SetGoal(ctx context.Context, goal *domain.Record) error {
	e.state = StateSelectingRuleSet
	e.goal = goal
	e.ruleSet = nil
	e.subs = nil
	e.lastFired = nil
	e.goalErr = nil

	if goal == nil {
		return e.failGoal(ctx, domain.ErrNoGoal)
	}

	rs, ok := e.library.Get(goal.Kind)
	if !ok {
		return e.failGoal(ctx, fmt.Errorf("%w: no rule-set can satisfy goal %q", domain.ErrNoRuleSet, goal.Kind))
	}
	subs, err := rs.BindGoal(goal)
	if err != nil {
		return e.failGoal(ctx, err)
	}

	e.ruleSet = rs
	e.subs = subs
	e.state = StateEvaluating
	return nil
}

func (e *Engine) failGoal(ctx context.Context, err error) error {
	e.state = StateFailed
	e.goalErr = &GoalError{Goal: e.goal, Err: err}
	e.logger.WarnContext(ctx, "goal rejected", "goal", e.goal.String(), "err", err)
	return e.goalErr
}

// Run evaluates the goal until a rule terminates it.
//
// It returns (true, nil) on done and (false, nil) on fail or when an action
// or sub-goal fails. Binding errors, exceeded tick limits and context
// cancellation are returned as errors with a false result.
func (e *Engine) Run(ctx context.Context) (bool, error) {
	if e.goal == nil {
		return false, domain.ErrNoGoal
	}
	if e.goalErr != nil {
		return false, e.goalErr
	}
	if e.state != StateEvaluating {
		return e.state == StateDone, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	ctx, span := e.tracer.Start(ctx, "sensact.goal", trace.WithAttributes(
		attribute.String("sensact.ruleset", e.ruleSet.Name),
		attribute.String("sensact.goal", e.goal.String()),
		attribute.Int("sensact.depth", e.depth),
	))
	defer span.End()

	start := time.Now()
	e.emitGoalEnter(ctx)

	ok, err := e.loop(ctx)

	if ok {
		e.state = StateDone
	} else {
		e.state = StateFailed
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !ok:
		span.SetStatus(codes.Error, "goal failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
	e.emitGoalLeave(ctx, ok, err, time.Since(start))
	return ok, err
}

func (e *Engine) loop(ctx context.Context) (bool, error) {
	for tick := 1; ; tick++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if e.maxTicks > 0 && tick > e.maxTicks {
			return false, fmt.Errorf("%w: goal %q after %d ticks", domain.ErrTickLimit, e.ruleSet.Name, e.maxTicks)
		}

		e.state = StateEvaluating
		rule := e.selectRule(ctx)
		switch {
		case rule == nil:
			e.lastFired = nil
		case rule == e.lastFired && !rule.FireAlways:
			e.logger.DebugContext(ctx, "rule already fired, idle tick", "ruleset", e.ruleSet.Name, "rule", rule.ID, "tick", tick)
		default:
			e.state = StateFiring
			e.lastFired = rule
			e.emitRuleFire(ctx, rule, tick)

			terminated, ok, err := e.fire(ctx, rule)
			if err != nil || terminated {
				return ok, err
			}
			continue
		}

		if err := e.sleep(ctx); err != nil {
			return false, err
		}
	}
}

// selectRule returns the first rule whose conditions all hold.
func (e *Engine) selectRule(ctx context.Context) *domain.Rule {
	for _, rule := range e.ruleSet.Rules {
		if e.satisfied(ctx, rule) {
			return rule
		}
	}
	return nil
}

func (e *Engine) satisfied(ctx context.Context, rule *domain.Rule) bool {
	for _, cond := range rule.Conditions {
		if cond.Kind == domain.ConditionAlways {
			continue
		}
		if !e.sensor.Sense(ctx, e.subs.Apply(cond)) {
			return false
		}
	}
	return true
}

// fire runs the actions of rule in order. terminated reports whether the
// goal ended, with ok as its result.
func (e *Engine) fire(ctx context.Context, rule *domain.Rule) (terminated, ok bool, err error) {
	for _, tmpl := range rule.Actions {
		action := e.subs.Apply(tmpl)

		switch {
		case action.Kind == domain.ActionDone:
			e.emitAction(ctx, rule, action, true)
			return true, true, nil

		case action.Kind == domain.ActionFail:
			e.emitAction(ctx, rule, action, true)
			return true, false, nil

		case e.library.Has(action.Kind):
			ok, err := e.subGoal(ctx, action)
			e.emitAction(ctx, rule, action, ok)
			if err != nil {
				if isFatal(err) {
					return true, false, err
				}
				e.logger.WarnContext(ctx, "sub-goal failed", "ruleset", e.ruleSet.Name, "rule", rule.ID, "goal", action.Kind, "err", err)
				return true, false, nil
			}
			if !ok {
				return true, false, nil
			}

		default:
			ok := e.actor.Act(ctx, action)
			e.emitAction(ctx, rule, action, ok)
			if !ok {
				e.logger.DebugContext(ctx, "action failed", "ruleset", e.ruleSet.Name, "rule", rule.ID, "action", action.String())
				return true, false, nil
			}
		}
	}
	return false, false, nil
}

// subGoal runs action as the goal of a fresh engine.
func (e *Engine) subGoal(ctx context.Context, action *domain.Record) (bool, error) {
	goal := action
	if e.vars != nil {
		goal = action.Clone()
		for _, a := range action.Attributes() {
			goal.Set(a.Name, e.vars.Expand(a.Value))
		}
	}

	child := &Engine{
		library:  e.library,
		sensor:   e.sensor,
		actor:    e.actor,
		vars:     e.vars,
		logger:   e.logger,
		hooks:    e.hooks,
		tracer:   e.tracer,
		maxTicks: e.maxTicks,
		poll:     e.poll,
		runID:    e.runID,
		depth:    e.depth + 1,
	}
	if err := child.SetGoal(ctx, goal); err != nil {
		return false, err
	}
	return child.Run(ctx)
}

func (e *Engine) sleep(ctx context.Context) error {
	if e.poll <= 0 {
		return nil
	}
	t := time.NewTimer(e.poll)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isFatal reports errors that must unwind every enclosing goal.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrTickLimit) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
