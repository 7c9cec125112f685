// Package validator lints a compiled rule-set library beyond what the
// compiler checks document by document.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kinds reports the condition and action kinds a run will understand.
// *registry.Registry implements it.
type Kinds interface {
	HasCondition(kind string) bool
	HasAction(kind string) bool
}

// Issue is one finding of Lint.
type Issue struct {
	Severity Severity `json:"severity"`
	RuleSet  string   `json:"ruleset,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var where []string
	if i.RuleSet != "" {
		where = append(where, i.RuleSet)
	}
	if i.Rule != "" {
		where = append(where, i.Rule)
	}
	if len(where) == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, strings.Join(where, "/"), i.Message)
}

// Lint checks every rule set of lib:
//   - condition kinds must be known
//   - action kinds must be done, fail, a rule set or a known action
//   - sub-goal actions must bind the parameters of their rule set
//   - a fallback rule shadows every rule after it
//   - rule sets unreachable from the default goal are reported
//
// A nil kinds skips the kind checks.
func Lint(lib *domain.Library, kinds Kinds) []Issue {
	var issues []Issue
	add := func(sev Severity, rs, rule, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, RuleSet: rs, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	for _, rs := range lib.RuleSets() {
		for i, rule := range rs.Rules {
			if rule.IsFallback() && i < len(rs.Rules)-1 {
				add(SeverityWarning, rs.Name, rule.ID, "fallback rule shadows %d later rule(s)", len(rs.Rules)-1-i)
			}

			for _, cond := range rule.Conditions {
				if cond.Kind == domain.ConditionAlways || kinds == nil {
					continue
				}
				if !kinds.HasCondition(cond.Kind) {
					add(SeverityError, rs.Name, rule.ID, "unknown condition kind %q", cond.Kind)
				}
			}

			for _, action := range rule.Actions {
				switch {
				case action.Kind == domain.ActionDone, action.Kind == domain.ActionFail:
				case lib.Has(action.Kind):
					sub, _ := lib.Get(action.Kind)
					if _, err := sub.BindGoal(action); err != nil {
						add(SeverityError, rs.Name, rule.ID, "sub-goal %s: %v", action.Kind, err)
					}
					if kinds != nil && kinds.HasAction(action.Kind) {
						add(SeverityWarning, rs.Name, rule.ID, "rule set %q hides the action of the same name", action.Kind)
					}
				case kinds != nil && !kinds.HasAction(action.Kind):
					add(SeverityError, rs.Name, rule.ID, "%q is neither a rule set nor a known action", action.Kind)
				}
			}
		}
	}

	if goal := lib.DefaultGoal; goal != nil {
		if !lib.Has(goal.Kind) {
			add(SeverityError, "", "", "default goal %q has no rule set", goal.Kind)
		} else {
			reached := Reachable(lib, goal.Kind)
			for _, name := range lib.Names() {
				if !reached[name] {
					add(SeverityWarning, name, "", "unreachable from default goal %q", goal.Kind)
				}
			}
		}
	}
	return issues
}

// Reachable returns the rule sets reachable from start through sub-goal actions.
func Reachable(lib *domain.Library, start string) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		rs, ok := lib.Get(current)
		if !ok {
			continue
		}
		visited[current] = true
		for _, rule := range rs.Rules {
			for _, action := range rule.Actions {
				if lib.Has(action.Kind) && !visited[action.Kind] {
					queue = append(queue, action.Kind)
				}
			}
		}
	}
	return visited
}

// Validate returns an error listing the error-level issues of Lint.
func Validate(lib *domain.Library, kinds Kinds) error {
	var errs []string
	for _, issue := range Lint(lib, kinds) {
		if issue.Severity == SeverityError {
			errs = append(errs, issue.String())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}
