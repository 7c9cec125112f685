package sensors

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/guipath"
	"github.com/jmespath/go-jmespath"
)

// Condition kinds registered by New.
const (
	CondExists  = "exists"
	CondAbsent  = "absent"
	CondValue   = "value"
	CondState   = "state"
	CondGlimpse = "glimpse"
	CondVar     = "var"
	CondUnset   = "unset"
	CondQuery   = "query"
	CondNode    = "node"
)

func (k *Kit) registerConditions() {
	k.registry.RegisterCondition(domain.ConditionAlways, func(context.Context, *domain.Record) (bool, error) {
		return true, nil
	})
	k.registry.RegisterCondition(CondExists, k.exists)
	k.registry.RegisterCondition(CondAbsent, k.absent)
	k.registry.RegisterCondition(CondValue, k.value)
	k.registry.RegisterCondition(CondState, k.state)
	k.registry.RegisterCondition(CondGlimpse, k.glimpse)
	k.registry.RegisterCondition(CondVar, k.isSet)
	k.registry.RegisterCondition(CondUnset, k.isUnset)
	k.registry.RegisterCondition(CondQuery, k.query)
	k.registry.RegisterCondition(CondNode, k.node)
}

func (k *Kit) exists(_ context.Context, c *domain.Record) (bool, error) {
	el, err := k.locate(c, domain.ModeIndexed, guipath.NopVisitor{})
	return el != nil, err
}

func (k *Kit) absent(_ context.Context, c *domain.Record) (bool, error) {
	el, err := k.locate(c, domain.ModeIndexed, guipath.NopVisitor{})
	if err != nil {
		return false, err
	}
	return el == nil, nil
}

// value compares the element value with "equals" or the full-match regular
// expression "matches". Without either it tests for a non-empty value.
func (k *Kit) value(_ context.Context, c *domain.Record) (bool, error) {
	el, err := k.locate(c, domain.ModeIndexed, guipath.NopVisitor{})
	if err != nil || el == nil {
		return false, err
	}
	return k.compare(c, el.Value())
}

func (k *Kit) compare(c *domain.Record, got string) (bool, error) {
	if want, ok := k.optional(c, "equals"); ok {
		return got == want, nil
	}
	if expr, ok := k.optional(c, "matches"); ok {
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		return re.MatchString(got), nil
	}
	return got != "", nil
}

func (k *Kit) state(_ context.Context, c *domain.Record) (bool, error) {
	flag, err := k.require(c, "has")
	if err != nil {
		return false, err
	}
	el, err := k.locate(c, domain.ModeIndexed, guipath.NopVisitor{})
	if err != nil || el == nil {
		return false, err
	}
	return slices.Contains(el.State(), flag), nil
}

// glimpse probes the tree depth-first without triggering any element.
func (k *Kit) glimpse(_ context.Context, c *domain.Record) (bool, error) {
	el, err := k.locate(c, domain.ModeDepthFirst, guipath.NopVisitor{})
	if err != nil || el == nil {
		return false, err
	}
	if _, ok := c.Get("equals"); ok {
		return k.compare(c, el.Value())
	}
	if _, ok := c.Get("matches"); ok {
		return k.compare(c, el.Value())
	}
	return true, nil
}

func (k *Kit) isSet(_ context.Context, c *domain.Record) (bool, error) {
	ref, err := k.require(c, "name")
	if err != nil {
		return false, err
	}
	got, ok := k.vars.GetDotted(splitVar(ref))
	if !ok {
		return false, nil
	}
	if want, ok := k.optional(c, "equals"); ok {
		return got == want, nil
	}
	return true, nil
}

func (k *Kit) isUnset(ctx context.Context, c *domain.Record) (bool, error) {
	set, err := k.isSet(ctx, domain.NewRecord(c.Kind, "name", c.Value("name")))
	if err != nil {
		return false, err
	}
	return !set, nil
}

// query evaluates a JMESPath expression over the variable tree.
func (k *Kit) query(_ context.Context, c *domain.Record) (bool, error) {
	expr, ok := c.Get("expr")
	if !ok {
		return false, fmt.Errorf("%w %q in %s", errMissingAttr, "expr", c.Kind)
	}
	result, err := jmespath.Search(expr, k.vars.Tree())
	if err != nil {
		return false, fmt.Errorf("query %q: %w", expr, err)
	}
	return truthy(result), nil
}

// truthy follows the JMESPath notion of false: null, false and empty
// strings, lists and objects.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func (k *Kit) node(_ context.Context, c *domain.Record) (bool, error) {
	id, err := k.require(c, "id")
	if err != nil {
		return false, err
	}
	b, ok := k.vars.GetNode(id)
	if !ok {
		return false, nil
	}
	if mark, ok := k.optional(c, "mark"); ok {
		return b.Mark == mark, nil
	}
	return true, nil
}
