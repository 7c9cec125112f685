package dsl

import "github.com/aretw0/sensact/pkg/domain"

// RuleSetBuilder provides a fluent API for configuring a rule set.
type RuleSetBuilder struct {
	rs      *domain.RuleSet
	builder *Builder
}

// Describe sets the rule-set description.
func (r *RuleSetBuilder) Describe(text string) *RuleSetBuilder {
	r.rs.Description = text
	return r
}

// Param declares a formal parameter. An empty default makes it required.
func (r *RuleSetBuilder) Param(name, def string) *RuleSetBuilder {
	r.rs.Params = append(r.rs.Params, domain.Param{Name: name, Default: def})
	return r
}

// Rule appends a rule. Rules are tried in the order they are added.
func (r *RuleSetBuilder) Rule(id string) *RuleBuilder {
	rule := &domain.Rule{ID: id}
	r.rs.Rules = append(r.rs.Rules, rule)
	return &RuleBuilder{rule: rule, set: r}
}

// RuleSet switches to another rule set of the same library.
func (r *RuleSetBuilder) RuleSet(name string) *RuleSetBuilder {
	return r.builder.RuleSet(name)
}

// Build returns the underlying rule set.
func (r *RuleSetBuilder) Build() *domain.RuleSet {
	return r.rs
}

// RuleBuilder configures one rule.
type RuleBuilder struct {
	rule *domain.Rule
	set  *RuleSetBuilder
}

// When adds a condition from a kind and alternating name/value pairs.
func (b *RuleBuilder) When(kind string, kv ...string) *RuleBuilder {
	b.rule.Conditions = append(b.rule.Conditions, domain.NewRecord(kind, kv...))
	return b
}

// Always makes the rule a fallback.
func (b *RuleBuilder) Always() *RuleBuilder {
	return b.When(domain.ConditionAlways)
}

// Do adds an action. A kind naming a rule set is a sub-goal.
func (b *RuleBuilder) Do(kind string, kv ...string) *RuleBuilder {
	b.rule.Actions = append(b.rule.Actions, domain.NewRecord(kind, kv...))
	return b
}

// Done ends the goal with success when the rule fires.
func (b *RuleBuilder) Done() *RuleBuilder {
	return b.Do(domain.ActionDone)
}

// Fail ends the goal with failure when the rule fires.
func (b *RuleBuilder) Fail() *RuleBuilder {
	return b.Do(domain.ActionFail)
}

// FireAlways lets the rule fire on consecutive ticks.
func (b *RuleBuilder) FireAlways() *RuleBuilder {
	b.rule.FireAlways = true
	return b
}

// Describe sets the rule description.
func (b *RuleBuilder) Describe(text string) *RuleBuilder {
	b.rule.Description = text
	return b
}

// Rule appends the next rule to the same rule set.
func (b *RuleBuilder) Rule(id string) *RuleBuilder {
	return b.set.Rule(id)
}

// RuleSet switches to another rule set of the same library.
func (b *RuleBuilder) RuleSet(name string) *RuleSetBuilder {
	return b.set.builder.RuleSet(name)
}
