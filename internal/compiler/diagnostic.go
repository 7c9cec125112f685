package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity grades a diagnostic.
type Severity string

const (
	// SeverityError means something was dropped.
	SeverityError Severity = "error"
	// SeverityWarning means the input was accepted as is.
	SeverityWarning Severity = "warning"
)

// Diagnostic reports a recoverable structural problem of a document.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"`
	Line     int      `json:"line,omitempty"`
	RuleSet  string   `json:"ruleset,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Message  string   `json:"message"`
}

func (d *Diagnostic) Error() string {
	loc := d.Source
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
	}
	where := d.RuleSet
	if d.Rule != "" {
		where += "/" + d.Rule
	}
	if where != "" {
		return fmt.Sprintf("%s: %s: %s: %s", d.Severity, loc, where, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, loc, d.Message)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

type collector struct {
	source string
	diags  []Diagnostic
}

func (c *collector) add(sev Severity, n *yaml.Node, ruleSet, rule, format string, args ...any) {
	d := Diagnostic{
		Severity: sev,
		Source:   c.source,
		RuleSet:  ruleSet,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	}
	if n != nil {
		d.Line = n.Line
	}
	c.diags = append(c.diags, d)
}

func (c *collector) errorf(n *yaml.Node, ruleSet, rule, format string, args ...any) {
	c.add(SeverityError, n, ruleSet, rule, format, args...)
}

func (c *collector) warnf(n *yaml.Node, ruleSet, rule, format string, args ...any) {
	c.add(SeverityWarning, n, ruleSet, rule, format, args...)
}
