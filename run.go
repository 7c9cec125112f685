package sensact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/sensact/internal/runtime"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/registry"
	"github.com/aretw0/sensact/pkg/sensors"
	"github.com/aretw0/sensact/pkg/variables"
	"github.com/google/uuid"
)

type runConfig struct {
	id     string
	target string
	vars   map[string]string
	hooks  domain.LifecycleHooks
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithRunID overrides the generated run id.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.id = id
	}
}

// WithTarget sets the key runs are serialized on. It defaults to the handle
// of the root element, or the library name when the root has none.
func WithTarget(target string) RunOption {
	return func(c *runConfig) {
		c.target = target
	}
}

// WithInitialVariables seeds the variable store of the run.
// Dotted names ("row.index") are stored as fields.
func WithInitialVariables(vars map[string]string) RunOption {
	return func(c *runConfig) {
		c.vars = vars
	}
}

// WithRunHooks adds hooks that only observe this run.
func WithRunHooks(hooks domain.LifecycleHooks) RunOption {
	return func(c *runConfig) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// Run drives goal against the UI tree below root and returns the snapshot of
// the run. A nil goal runs the default goal of the library.
//
// A goal that fails is not an error: the snapshot carries OutcomeFailed.
// Errors are returned for unbindable goals, exceeded bounds, cancellation
// and lock or store failures. The snapshot is returned whenever the run
// started, even alongside an error.
func (e *Engine) Run(ctx context.Context, goal *domain.Record, root ports.Element, opts ...RunOption) (*domain.Snapshot, error) {
	lib := e.Library()
	if goal == nil {
		goal = lib.DefaultGoal
	}
	if goal == nil {
		return nil, domain.ErrNoGoal
	}

	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.target == "" {
		cfg.target = e.targetOf(root)
	}

	return e.sessions.Execute(ctx, cfg.target, func(ctx context.Context) (*domain.Snapshot, error) {
		return e.run(ctx, lib, goal.Clone(), root, cfg)
	})
}

func (e *Engine) run(ctx context.Context, lib *domain.Library, goal *domain.Record, root ports.Element, cfg runConfig) (*domain.Snapshot, error) {
	logger := e.logger.With("run_id", cfg.id)

	// 1. Fresh per-run state
	vars := variables.New()
	vars.Restore(cfg.vars)

	reg := registry.NewRegistry()
	kitOpts := []sensors.Option{
		sensors.WithLogger(logger),
		sensors.WithRegistry(reg),
	}
	if e.maxDepth > 0 {
		kitOpts = append(kitOpts, sensors.WithMaxDepth(e.maxDepth))
	}
	kit := sensors.New(root, vars, kitOpts...)
	for kind, fn := range e.conditions {
		reg.RegisterCondition(kind, fn)
	}
	for kind, fn := range e.actions {
		reg.RegisterAction(kind, fn)
	}

	// 2. Record every firing, sub-goals included
	var mu sync.Mutex
	var fired []domain.FiredRule
	recorder := domain.LifecycleHooks{
		OnRuleFire: func(_ context.Context, ev *domain.RuleEvent) {
			mu.Lock()
			fired = append(fired, domain.FiredRule{
				RuleSet: ev.RuleSet,
				RuleID:  ev.RuleID,
				Tick:    ev.Tick,
				Depth:   ev.Depth,
			})
			mu.Unlock()
		},
	}

	opts := append(e.runtimeOptions(),
		runtime.WithLogger(logger),
		runtime.WithVariables(vars),
		runtime.WithRunID(cfg.id),
		runtime.WithLifecycleHooks(recorder.Merge(e.hooks).Merge(cfg.hooks)),
	)
	engine := runtime.NewEngine(lib, kit, kit, opts...)

	snap := &domain.Snapshot{
		ID:        cfg.id,
		Goal:      goal,
		StartedAt: time.Now().UTC(),
	}

	// 3. Bind and run
	if err := engine.SetGoal(ctx, goal); err != nil {
		return nil, err
	}
	ok, err := engine.Run(ctx)

	snap.FinishedAt = time.Now().UTC()
	snap.Variables = vars.Snapshot()
	mu.Lock()
	snap.Fired = fired
	mu.Unlock()

	switch {
	case err != nil && isAbort(err):
		snap.Outcome = domain.OutcomeAborted
		snap.Reason = err.Error()
	case err != nil:
		snap.Outcome = domain.OutcomeFailed
		snap.Reason = err.Error()
	case ok:
		snap.Outcome = domain.OutcomeDone
	default:
		snap.Outcome = domain.OutcomeFailed
	}

	logger.InfoContext(ctx, "run finished",
		"goal", goal.String(),
		"outcome", snap.Outcome,
		"rules_fired", len(snap.Fired),
		"duration", snap.Duration(),
	)
	if err != nil {
		return snap, fmt.Errorf("run %s: %w", cfg.id, err)
	}
	return snap, nil
}

func (e *Engine) targetOf(root ports.Element) string {
	if root != nil {
		if h := root.Handle(); h != "" {
			return h
		}
	}
	if e.Name != "" {
		return e.Name
	}
	return "default"
}

func isAbort(err error) bool {
	return errors.Is(err, domain.ErrTickLimit) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
