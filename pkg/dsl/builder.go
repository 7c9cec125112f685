package dsl

import (
	"fmt"

	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DocumentID is the id of the document Build produces.
const DocumentID = "dsl"

// Builder manages the library construction.
type Builder struct {
	goal  *domain.Record
	sets  []*RuleSetBuilder
	index map[string]*RuleSetBuilder
}

// New creates a new library builder.
func New() *Builder {
	return &Builder{index: make(map[string]*RuleSetBuilder)}
}

// Goal sets the default goal from a kind and alternating name/value pairs.
func (b *Builder) Goal(kind string, kv ...string) *Builder {
	b.goal = domain.NewRecord(kind, kv...)
	return b
}

// RuleSet starts a rule set. If it already exists, it returns the existing builder.
func (b *Builder) RuleSet(name string) *RuleSetBuilder {
	if rb, ok := b.index[name]; ok {
		return rb
	}
	rb := &RuleSetBuilder{rs: &domain.RuleSet{Name: name}, builder: b}
	b.index[name] = rb
	b.sets = append(b.sets, rb)
	return rb
}

// Document renders the library as one rule-set document.
func (b *Builder) Document() ([]byte, error) {
	sets := seq()
	for _, rb := range b.sets {
		for _, r := range rb.rs.Rules {
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("rule-set %q: %w", rb.rs.Name, err)
			}
		}
		sets.Content = append(sets.Content, ruleSetNode(rb.rs))
	}

	top := mapping()
	if b.goal != nil {
		put(top, "goal", recordNode(b.goal))
	}
	put(top, "rulesets", sets)
	return yaml.Marshal(top)
}

// Build compiles the library into a memory loader holding one document.
func (b *Builder) Build() (*memory.Loader, error) {
	data, err := b.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to build library: %w", err)
	}
	return memory.NewLoader(map[string]string{DocumentID: string(data)}), nil
}

func ruleSetNode(rs *domain.RuleSet) *yaml.Node {
	n := mapping()
	put(n, "id", str(rs.Name))
	if rs.Description != "" {
		put(n, "description", str(rs.Description))
	}
	if len(rs.Params) > 0 {
		params := seq()
		for _, p := range rs.Params {
			pn := mapping()
			put(pn, "name", str(p.Name))
			if p.Default != "" {
				put(pn, "default", str(p.Default))
			}
			params.Content = append(params.Content, pn)
		}
		put(n, "params", params)
	}

	rules := seq()
	for _, r := range rs.Rules {
		rn := mapping()
		put(rn, "id", str(r.ID))
		if r.Description != "" {
			put(rn, "description", str(r.Description))
		}
		if r.FireAlways {
			put(rn, "fire_always", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
		}
		put(rn, "when", records(r.Conditions))
		put(rn, "do", records(r.Actions))
		rules.Content = append(rules.Content, rn)
	}
	put(n, "rules", rules)
	return n
}

func records(recs []*domain.Record) *yaml.Node {
	n := seq()
	n.Style = yaml.FlowStyle
	for _, r := range recs {
		n.Content = append(n.Content, recordNode(r))
	}
	return n
}

// recordNode renders a bare kind, or a single-key mapping keeping attribute order.
func recordNode(r *domain.Record) *yaml.Node {
	if r.Len() == 0 {
		return str(r.Kind)
	}
	body := mapping()
	body.Style = yaml.FlowStyle
	for _, a := range r.Attributes() {
		put(body, a.Name, str(a.Value))
	}
	n := mapping()
	n.Style = yaml.FlowStyle
	put(n, r.Kind, body)
	return n
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"} }
func seq() *yaml.Node     { return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"} }
func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

func put(m *yaml.Node, key string, val *yaml.Node) {
	m.Content = append(m.Content, str(key), val)
}
