package ports

import (
	"context"

	"github.com/aretw0/sensact/pkg/domain"
)

// Sensor evaluates a condition record against the UI under test.
// Repeated calls with the same record against an unchanged UI must return
// the same result.
type Sensor interface {
	Sense(ctx context.Context, condition *domain.Record) bool
}

// Actor executes an action record. Its boolean result is the only success
// signal the engine consumes.
type Actor interface {
	Act(ctx context.Context, action *domain.Record) bool
}

// SensorFunc adapts a function to the Sensor interface.
type SensorFunc func(ctx context.Context, condition *domain.Record) bool

// Sense calls f.
func (f SensorFunc) Sense(ctx context.Context, condition *domain.Record) bool {
	return f(ctx, condition)
}

// ActorFunc adapts a function to the Actor interface.
type ActorFunc func(ctx context.Context, action *domain.Record) bool

// Act calls f.
func (f ActorFunc) Act(ctx context.Context, action *domain.Record) bool {
	return f(ctx, action)
}
