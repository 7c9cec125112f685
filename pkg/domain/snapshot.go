package domain

import "time"

// Outcome is the terminal state of a top-level run.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeFailed  Outcome = "failed"
	OutcomeAborted Outcome = "aborted" // bound exceeded or context cancelled
)

// FiredRule records one rule firing during a run.
type FiredRule struct {
	RuleSet string `json:"ruleset"`
	RuleID  string `json:"rule_id"`
	Tick    int    `json:"tick"`
	Depth   int    `json:"depth"`
}

// Snapshot is the persisted record of one top-level run.
type Snapshot struct {
	ID         string            `json:"id"`
	Goal       *Record           `json:"goal"`
	Outcome    Outcome           `json:"outcome"`
	Reason     string            `json:"reason,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	Fired      []FiredRule       `json:"fired,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Duration returns the wall-clock length of the run.
func (s *Snapshot) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
