package sensact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/sensact/internal/compiler"
	"github.com/aretw0/sensact/internal/runtime"
	"github.com/aretw0/sensact/pkg/adapters/file"
	loamAdapter "github.com/aretw0/sensact/pkg/adapters/loam"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/registry"
	"github.com/aretw0/sensact/pkg/session"
)

// Engine is the high-level entry point of the library. It owns the rule-set
// library and runs goals against UI trees.
type Engine struct {
	loader   ports.RuleLoader
	useLoam  bool
	parser   *compiler.Parser
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	store    ports.SnapshotStore
	locker   ports.DistributedLocker
	sessions *session.Manager

	conditions map[string]registry.SenseFunc
	actions    map[string]registry.ActFunc

	maxTicks int
	timeout  time.Duration
	poll     time.Duration
	maxDepth int

	mu      sync.RWMutex
	library *domain.Library
	diags   []compiler.Diagnostic

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom RuleLoader, bypassing the default directory loader.
func WithLoader(l ports.RuleLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLoam reads the directory as a Loam repository (markdown frontmatter,
// YAML or JSON documents) and enables Watch.
func WithLoam() Option {
	return func(e *Engine) {
		e.useLoam = true
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated options chain.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithStore persists a snapshot of every run.
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes runs per target across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithCondition registers a custom condition kind for every run.
func WithCondition(kind string, fn registry.SenseFunc) Option {
	return func(e *Engine) {
		e.conditions[kind] = fn
	}
}

// WithAction registers a custom action kind for every run.
func WithAction(kind string, fn registry.ActFunc) Option {
	return func(e *Engine) {
		e.actions[kind] = fn
	}
}

// WithMaxTicks bounds the evaluation ticks of each goal.
func WithMaxTicks(n int) Option {
	return func(e *Engine) {
		e.maxTicks = n
	}
}

// WithTimeout bounds the wall-clock time of a run.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithPollInterval sleeps between idle ticks.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.poll = d
	}
}

// WithMaxDepth bounds GUI path resolution depth.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// New loads the rule-set documents found in dir.
// With WithLoader, dir is only used as a descriptive name and may be empty.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		conditions: make(map[string]registry.SenseFunc),
		actions:    make(map[string]registry.ActFunc),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if eng.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		if eng.useLoam {
			// The engine never writes rule sets.
			repo, err := loam.Init(absPath,
				loam.WithStrict(true),
				loam.WithReadOnly(true),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize loam: %w", err)
			}
			eng.loader = loamAdapter.New(loam.NewTypedRepository[loamAdapter.RuleSetMetadata](repo))
		} else {
			eng.loader = file.NewLoader(absPath)
		}
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("library", eng.Name)
	}

	eng.parser = compiler.NewParser(compiler.WithLogger(eng.logger))
	eng.sessions = session.NewManager(eng.store,
		session.WithLocker(eng.locker),
		session.WithLogger(eng.logger),
	)

	if err := eng.Reload(); err != nil {
		return nil, err
	}
	return eng, nil
}

// Reload re-reads every document. The previous library stays in place when
// a document cannot be decoded.
func (e *Engine) Reload() error {
	lib, diags, err := e.parser.Load(e.loader)
	if err != nil {
		return fmt.Errorf("failed to load rule sets: %w", err)
	}
	e.mu.Lock()
	e.library = lib
	e.diags = diags
	e.mu.Unlock()
	e.logger.Debug("library loaded", "rulesets", lib.Len(), "diagnostics", len(diags))
	return nil
}

// Library returns the current rule-set library.
func (e *Engine) Library() *domain.Library {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.library
}

// Diagnostics returns the problems found by the last load.
func (e *Engine) Diagnostics() []compiler.Diagnostic {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]compiler.Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

// Validate returns an error summarizing the error diagnostics of the last load.
func (e *Engine) Validate() error {
	var errs []compiler.Diagnostic
	for _, d := range e.Diagnostics() {
		if d.Severity == compiler.SeverityError {
			errs = append(errs, d)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return &errs[0]
	default:
		return fmt.Errorf("%w (and %d more)", &errs[0], len(errs)-1)
	}
}

// Inspect returns the rule sets in load order.
func (e *Engine) Inspect() []*domain.RuleSet {
	return e.Library().RuleSets()
}

// Sessions exposes the run coordinator, e.g. to list or delete snapshots.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Watch returns a channel that signals when the underlying documents change.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying RuleLoader.
func (e *Engine) Loader() ports.RuleLoader {
	return e.loader
}

func (e *Engine) runtimeOptions() []runtime.Option {
	return []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithMaxTicks(e.maxTicks),
		runtime.WithTimeout(e.timeout),
		runtime.WithPollInterval(e.poll),
	}
}
