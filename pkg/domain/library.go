package domain

import (
	"fmt"
	"sort"
)

// Library is the resolver map from rule-set name to RuleSet.
// It is built once at load time and shared read-only by every engine,
// including nested sub-goal engines.
type Library struct {
	sets        map[string]*RuleSet
	order       []string
	DefaultGoal *Record
}

// NewLibrary indexes the given rule sets. Duplicate names are rejected.
func NewLibrary(sets ...*RuleSet) (*Library, error) {
	lib := &Library{sets: make(map[string]*RuleSet, len(sets))}
	for _, rs := range sets {
		if err := lib.Add(rs); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Add registers a rule set.
func (l *Library) Add(rs *RuleSet) error {
	if rs == nil || rs.Name == "" {
		return fmt.Errorf("rule-set missing name")
	}
	if _, exists := l.sets[rs.Name]; exists {
		return fmt.Errorf("duplicate rule-set %q", rs.Name)
	}
	if l.sets == nil {
		l.sets = make(map[string]*RuleSet)
	}
	l.sets[rs.Name] = rs
	l.order = append(l.order, rs.Name)
	return nil
}

// Get looks up a rule set by name.
func (l *Library) Get(name string) (*RuleSet, bool) {
	if l == nil {
		return nil, false
	}
	rs, ok := l.sets[name]
	return rs, ok
}

// Has reports whether a rule set with the given name exists.
func (l *Library) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Names returns the rule-set names in load order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// SortedNames returns the rule-set names in lexical order.
func (l *Library) SortedNames() []string {
	names := l.Names()
	sort.Strings(names)
	return names
}

// RuleSets returns the rule sets in load order.
func (l *Library) RuleSets() []*RuleSet {
	out := make([]*RuleSet, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.sets[name])
	}
	return out
}

// Len returns the number of rule sets.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.sets)
}
