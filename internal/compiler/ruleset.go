package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ruleSetDTO holds the scalar header of a rule set.
type ruleSetDTO struct {
	ID          string `mapstructure:"id" validate:"required"`
	Description string `mapstructure:"description"`
}

type paramDTO struct {
	Name    string `mapstructure:"name" validate:"required"`
	Default string `mapstructure:"default"`
}

// ruleDTO holds a rule after its blocks have been collected.
type ruleDTO struct {
	ID          string `mapstructure:"id"`
	Description string `mapstructure:"description"`
	FireAlways  bool   `mapstructure:"fire_always"`

	WhenBlocks int              `mapstructure:"-" validate:"eq=1"`
	When       []*domain.Record `mapstructure:"-" validate:"min=1"`
	Do         []*domain.Record `mapstructure:"-" validate:"min=1"`
}

func (p *Parser) parseRuleSet(c *collector, n *yaml.Node) *domain.RuleSet {
	if n.Kind != yaml.MappingNode {
		c.errorf(n, "", "", "rule set must be a mapping, got %s", kindName(n))
		return nil
	}

	// 1. Header
	header := make(map[string]any)
	var paramsNode, rulesNode *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "params":
			paramsNode = val
		case "rules":
			rulesNode = val
		default:
			if val.Kind == yaml.ScalarNode {
				header[key.Value] = val.Value
			}
		}
	}

	var dto ruleSetDTO
	if err := mapstructure.WeakDecode(header, &dto); err != nil {
		c.errorf(n, "", "", "invalid rule set header: %v", err)
		return nil
	}
	if err := p.validate.Struct(dto); err != nil {
		c.errorf(n, "", "", "rule set dropped: %s", describe(err))
		return nil
	}

	rs := &domain.RuleSet{Name: dto.ID, Description: dto.Description}

	// 2. Formal parameters
	if paramsNode != nil {
		rs.Params = p.parseParams(c, rs.Name, paramsNode)
	}

	// 3. Rules
	if rulesNode == nil || rulesNode.Kind != yaml.SequenceNode {
		c.warnf(n, rs.Name, "", "rule set has no rules")
		return rs
	}
	ids := make(map[string]bool)
	for idx, rn := range rulesNode.Content {
		rule := p.parseRule(c, rs.Name, idx, rn)
		if rule == nil {
			continue
		}
		if ids[rule.ID] {
			c.warnf(rn, rs.Name, rule.ID, "duplicate rule id")
		}
		ids[rule.ID] = true
		rs.Rules = append(rs.Rules, rule)
	}
	return rs
}

// parseParams accepts a list of {name, default} mappings or bare names, or a
// mapping of name to default.
func (p *Parser) parseParams(c *collector, ruleSet string, n *yaml.Node) []domain.Param {
	var params []domain.Param
	add := func(at *yaml.Node, dto paramDTO) {
		if err := p.validate.Struct(dto); err != nil {
			c.errorf(at, ruleSet, "", "parameter dropped: %s", describe(err))
			return
		}
		params = append(params, domain.Param{Name: dto.Name, Default: dto.Default})
	}

	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			def, _ := scalarString(n.Content[i+1])
			add(n.Content[i], paramDTO{Name: n.Content[i].Value, Default: def})
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				add(item, paramDTO{Name: item.Value})
				continue
			}
			var raw map[string]any
			if err := item.Decode(&raw); err != nil {
				c.errorf(item, ruleSet, "", "invalid parameter: %v", err)
				continue
			}
			var dto paramDTO
			if err := mapstructure.WeakDecode(raw, &dto); err != nil {
				c.errorf(item, ruleSet, "", "invalid parameter: %v", err)
				continue
			}
			if d := findKey(item, "default"); d != nil {
				dto.Default, _ = scalarString(d)
			}
			add(item, dto)
		}
	default:
		c.errorf(n, ruleSet, "", "params must be a list or a mapping, got %s", kindName(n))
	}
	return params
}

func (p *Parser) parseRule(c *collector, ruleSet string, idx int, n *yaml.Node) *domain.Rule {
	fallbackID := fmt.Sprintf("%s#%d", ruleSet, idx+1)
	if n.Kind != yaml.MappingNode {
		c.errorf(n, ruleSet, fallbackID, "rule must be a mapping, got %s", kindName(n))
		return nil
	}

	// 1. Header first, so block errors can name the rule.
	header := make(map[string]any)
	var blocks []*yaml.Node // alternating key, value
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "when", "do":
			blocks = append(blocks, key, val)
		default:
			if val.Kind == yaml.ScalarNode {
				header[key.Value] = val.Value
			}
		}
	}

	var dto ruleDTO
	if err := mapstructure.WeakDecode(header, &dto); err != nil {
		c.errorf(n, ruleSet, fallbackID, "invalid rule header: %v", err)
		return nil
	}
	if dto.ID == "" {
		dto.ID = fallbackID
	}

	// 2. Condition and action blocks
	for i := 0; i+1 < len(blocks); i += 2 {
		key, val := blocks[i], blocks[i+1]
		recs, err := parseEntries(val)
		if key.Value == "when" {
			dto.WhenBlocks++
			if err != nil {
				c.errorf(val, ruleSet, dto.ID, "rule dropped: invalid condition: %v", err)
				return nil
			}
			dto.When = recs
			continue
		}
		if err != nil {
			c.errorf(val, ruleSet, dto.ID, "rule dropped: invalid action: %v", err)
			return nil
		}
		dto.Do = recs
	}

	if err := p.validate.Struct(dto); err != nil {
		c.errorf(n, ruleSet, dto.ID, "rule dropped: %s", describe(err))
		return nil
	}

	rule := &domain.Rule{
		ID:          dto.ID,
		Description: dto.Description,
		FireAlways:  dto.FireAlways,
		Conditions:  dto.When,
		Actions:     dto.Do,
	}
	if err := rule.Validate(); err != nil {
		c.errorf(n, ruleSet, dto.ID, "rule dropped: %v", err)
		return nil
	}
	return rule
}

func parseEntries(n *yaml.Node) ([]*domain.Record, error) {
	if n.Kind != yaml.SequenceNode {
		if n.Tag == "!!null" {
			return nil, nil
		}
		rec, err := parseEntry(n)
		if err != nil {
			return nil, err
		}
		return []*domain.Record{rec}, nil
	}
	recs := make([]*domain.Record, 0, len(n.Content))
	for _, item := range n.Content {
		rec, err := parseEntry(item)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

var fieldMessages = map[string]string{
	"ID.required":   "missing id",
	"Name.required": "missing name",
	"When.min":      "empty when block",
	"Do.min":        "empty action list",
}

// describe turns validator errors into short messages.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	blockErr := false
	for _, fe := range verrs {
		if fe.Field() == "WhenBlocks" {
			blockErr = true
		}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Field() == "WhenBlocks" && fe.Value() == 0:
			msgs = append(msgs, "missing when block")
		case fe.Field() == "WhenBlocks":
			msgs = append(msgs, "duplicate when block")
		case fe.Field() == "When" && blockErr:
			// already reported through the block count
		default:
			if m, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
				msgs = append(msgs, m)
			} else {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		}
	}
	return strings.Join(msgs, "; ")
}
