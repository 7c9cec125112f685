package loam

import "fmt"

// RuleSetMetadata is the frontmatter (or YAML/JSON body) of a rule-set
// document stored in a Loam repository. A document holds either one rule set
// (id, params, rules) or a bundle (goal, rulesets).
type RuleSetMetadata struct {
	ID          string `json:"id,omitempty" mapstructure:"id"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Goal        any    `json:"goal,omitempty" mapstructure:"goal"`
	Params      any    `json:"params,omitempty" mapstructure:"params"`
	Rules       []any  `json:"rules,omitempty" mapstructure:"rules"`
	RuleSets    []any  `json:"rulesets,omitempty" mapstructure:"rulesets"`
}

// IsBundle reports whether the document lists several rule sets.
func (m RuleSetMetadata) IsBundle() bool {
	return len(m.RuleSets) > 0
}

// normalize converts YAML maps with non-string keys so the value can be
// encoded as JSON.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return v
	}
}

func normalizeAll(items []any) []any {
	if items == nil {
		return nil
	}
	return normalize(items).([]any)
}
