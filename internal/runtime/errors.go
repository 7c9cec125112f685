package runtime

import (
	"fmt"

	"github.com/aretw0/sensact/pkg/domain"
)

// GoalError reports why a goal could not be bound to a rule set.
type GoalError struct {
	Goal *domain.Record
	Err  error
}

func (e *GoalError) Error() string {
	return fmt.Sprintf("goal %s: %v", e.Goal, e.Err)
}

func (e *GoalError) Unwrap() error {
	return e.Err
}
