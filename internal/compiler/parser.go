// Package compiler turns rule-set documents into domain rule sets.
//
// Structural problems (a rule set without id, a rule without or with two
// "when" blocks, an empty action list) drop the offending rule or rule set
// and produce a Diagnostic; parsing carries on. Only undecodable input is fatal.
package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Document is the parsed content of one rule-set document.
type Document struct {
	Source   string
	Goal     *domain.Record
	RuleSets []*domain.RuleSet
}

// Parser converts raw documents into rule sets.
type Parser struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes a YAML (or JSON) document.
func (p *Parser) Parse(data []byte) (*Document, []Diagnostic, error) {
	return p.ParseSource("", data)
}

// ParseSource is Parse with the document source recorded in diagnostics.
func (p *Parser) ParseSource(source string, data []byte) (*Document, []Diagnostic, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse document %q: %w", source, err)
	}

	doc := &Document{Source: source}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("document %q: root must be a mapping, got %s", source, kindName(top))
	}

	c := &collector{source: source}

	// A document is either {goal, rulesets: [...]} or a single rule set.
	if findKey(top, "id") != nil && findKey(top, "rulesets") == nil {
		if rs := p.parseRuleSet(c, top); rs != nil {
			doc.RuleSets = append(doc.RuleSets, rs)
		}
	} else {
		for i := 0; i+1 < len(top.Content); i += 2 {
			key, val := top.Content[i], top.Content[i+1]
			switch key.Value {
			case "goal":
				goal, err := parseEntry(val)
				if err != nil {
					c.errorf(val, "", "", "invalid goal: %v", err)
					continue
				}
				doc.Goal = goal
			case "rulesets":
				if val.Kind != yaml.SequenceNode {
					c.errorf(val, "", "", "rulesets must be a list, got %s", kindName(val))
					continue
				}
				for _, item := range val.Content {
					if rs := p.parseRuleSet(c, item); rs != nil {
						doc.RuleSets = append(doc.RuleSets, rs)
					}
				}
			default:
				c.warnf(key, "", "", "unknown top-level key %q ignored", key.Value)
			}
		}
	}

	p.log(c.diags)
	return doc, c.diags, nil
}

func (p *Parser) log(diags []Diagnostic) {
	for _, d := range diags {
		level := slog.LevelWarn
		if d.Severity == SeverityError {
			level = slog.LevelError
		}
		p.logger.Log(context.Background(), level, "rule-set diagnostic",
			"source", d.Source,
			"line", d.Line,
			"ruleset", d.RuleSet,
			"rule", d.Rule,
			"msg", d.Message,
		)
	}
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

func findKey(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
