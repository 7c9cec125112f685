package domain

import "errors"

// ErrNoRuleSet is returned when no rule-set can satisfy a goal.
var ErrNoRuleSet = errors.New("no rule-set can satisfy goal")

// ErrMissingParameter is returned when a goal does not supply a parameter that has no default.
var ErrMissingParameter = errors.New("goal missing required parameter")

// ErrNoGoal is returned when an engine is run before a goal was set.
var ErrNoGoal = errors.New("no goal set")

// ErrTickLimit is returned when a run exceeds its configured iteration bound.
var ErrTickLimit = errors.New("tick limit exceeded")

// ErrInvalidRule marks a structurally invalid rule.
var ErrInvalidRule = errors.New("invalid rule")

// ErrSnapshotNotFound is returned when a run snapshot cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrLockAcquire is returned when a run lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire run lock")
