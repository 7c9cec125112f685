package domain

import (
	"fmt"
)

// Reserved record kinds understood by the engine itself.
const (
	// ConditionAlways is the sentinel condition of a fallback rule.
	// It is true without consulting the sensor.
	ConditionAlways = "always"

	// ActionDone terminates the current goal with success.
	ActionDone = "done"
	// ActionFail terminates the current goal with failure.
	ActionFail = "fail"
)

// Rule is a condition set (AND of sensor predicates) plus an ordered action list.
type Rule struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	FireAlways  bool      `json:"fire_always,omitempty"`
	Conditions  []*Record `json:"conditions"`
	Actions     []*Record `json:"actions"`
}

// Validate checks the structural invariants of a rule.
func (r *Rule) Validate() error {
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: rule %q has no conditions", ErrInvalidRule, r.ID)
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("%w: rule %q has no actions", ErrInvalidRule, r.ID)
	}
	sentinels := 0
	for _, c := range r.Conditions {
		if c.Kind == ConditionAlways {
			sentinels++
		}
	}
	if sentinels > 1 {
		return fmt.Errorf("%w: rule %q has %d '%s' conditions", ErrInvalidRule, r.ID, sentinels, ConditionAlways)
	}
	return nil
}

// IsFallback reports whether the rule is unconditionally satisfied.
func (r *Rule) IsFallback() bool {
	for _, c := range r.Conditions {
		if c.Kind != ConditionAlways {
			return false
		}
	}
	return len(r.Conditions) > 0
}

// Param is a formal parameter of a RuleSet.
type Param struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

// RuleSet is a named, ordered collection of rules able to satisfy goals of
// the same name. Rule order is significant.
type RuleSet struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params,omitempty"`
	Rules       []*Rule `json:"rules"`
}

// BindGoal binds the goal's attributes to the formal parameters in declared
// order and returns the substitution list used to rewrite every condition
// and action before use.
//
// A parameter takes the goal attribute of the same name. Failing that, the
// goal attribute at the parameter's position is used when its name is not
// itself a parameter, then the declared default.
func (rs *RuleSet) BindGoal(goal *Record) (Substitutions, error) {
	if goal == nil || goal.Kind != rs.Name {
		kind := "<nil>"
		if goal != nil {
			kind = goal.Kind
		}
		return nil, fmt.Errorf("%w: goal %q bound to rule-set %q", ErrNoRuleSet, kind, rs.Name)
	}

	attrs := goal.Attributes()
	subs := make(Substitutions, 0, len(rs.Params))
	for i, p := range rs.Params {
		value, ok := goal.Get(p.Name)
		if !ok && i < len(attrs) && !rs.HasParam(attrs[i].Name) {
			value, ok = attrs[i].Value, true
		}
		if !ok {
			value = p.Default
		}
		if value == "" {
			return nil, fmt.Errorf("%w: %q requires %q", ErrMissingParameter, rs.Name, p.Name)
		}
		subs = append(subs, Substitution{Placeholder: p.Name, Value: value})
	}
	return subs, nil
}

// HasParam reports whether name is a formal parameter.
func (rs *RuleSet) HasParam(name string) bool {
	for _, p := range rs.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Substitution renames one formal placeholder to its actual value.
type Substitution struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Substitutions is an ordered list of renames.
type Substitutions []Substitution

// Apply returns a copy of rec with every attribute value that equals a
// placeholder replaced by the bound value. Matching is exact equality; it is a
// flat rename, not a template language. The template record is not modified.
func (s Substitutions) Apply(rec *Record) *Record {
	out := rec.Clone()
	if out == nil || len(s) == 0 {
		return out
	}
	for i, a := range out.attrs {
		for _, sub := range s {
			if a.Value == sub.Placeholder {
				out.attrs[i].Value = sub.Value
				break
			}
		}
	}
	return out
}

// ApplyAll substitutes a list of records.
func (s Substitutions) ApplyAll(recs []*Record) []*Record {
	out := make([]*Record, len(recs))
	for i, r := range recs {
		out[i] = s.Apply(r)
	}
	return out
}

// Substitute returns a copy of the record with subs applied.
func (r *Record) Substitute(subs Substitutions) *Record {
	return subs.Apply(r)
}
