package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/variables"
	"go.opentelemetry.io/otel/trace"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithVariables shares a variable store; sub-goal actions have their
// attribute values expanded through it.
func WithVariables(vars *variables.Store) Option {
	return func(e *Engine) {
		e.vars = vars
	}
}

// WithMaxTicks bounds the number of evaluation ticks of each goal.
// Zero means unbounded.
func WithMaxTicks(n int) Option {
	return func(e *Engine) {
		e.maxTicks = n
	}
}

// WithTimeout bounds the wall-clock time of Run, sub-goals included.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithPollInterval sleeps between idle ticks. Zero re-polls immediately.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.poll = d
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithRunID tags events and logs with the id of the top-level run.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}
