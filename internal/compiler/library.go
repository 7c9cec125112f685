package compiler

import (
	"fmt"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// Library merges parsed documents into a resolver map. A rule set whose id
// is already taken is dropped with a diagnostic. The first document goal
// becomes the library default goal.
func Library(docs ...*Document) (*domain.Library, []Diagnostic) {
	lib, _ := domain.NewLibrary()
	var diags []Diagnostic
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if lib.DefaultGoal == nil && doc.Goal != nil {
			lib.DefaultGoal = doc.Goal
		}
		for _, rs := range doc.RuleSets {
			if err := lib.Add(rs); err != nil {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Source:   doc.Source,
					RuleSet:  rs.Name,
					Message:  fmt.Sprintf("rule set dropped: %v", err),
				})
			}
		}
	}
	return lib, diags
}

// Load reads every document of loader and builds the library.
// Undecodable documents are fatal; structural problems are reported as diagnostics.
func (p *Parser) Load(loader ports.RuleLoader) (*domain.Library, []Diagnostic, error) {
	ids, err := loader.ListDocuments()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rule-set documents: %w", err)
	}

	var docs []*Document
	var diags []Diagnostic
	for _, id := range ids {
		data, err := loader.GetDocument(id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read document %s: %w", id, err)
		}
		doc, d, err := p.ParseSource(id, data)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
		diags = append(diags, d...)
	}

	lib, d := Library(docs...)
	diags = append(diags, d...)
	p.log(d)
	return lib, diags, nil
}
