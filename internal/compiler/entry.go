package compiler

import (
	"fmt"

	"github.com/aretw0/sensact/pkg/domain"
	"gopkg.in/yaml.v3"
)

// shorthandAttr receives the scalar of a "kind: scalar" entry.
const shorthandAttr = "value"

// parseEntry decodes one condition, action or goal entry: either a bare kind
// ("done") or a single-key mapping ("click: {path: ...}" or "wait: 2s").
func parseEntry(n *yaml.Node) (*domain.Record, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, fmt.Errorf("empty entry")
		}
		return domain.NewRecord(n.Value), nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("entry must have exactly one kind, got %d", len(n.Content)/2)
		}
		kind, body := n.Content[0].Value, n.Content[1]
		if kind == "" {
			return nil, fmt.Errorf("empty entry kind")
		}
		rec := domain.NewRecord(kind)
		if err := decodeAttributes(rec, body); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("entry must be a kind or a single-key mapping, got %s", kindName(n))
	}
}

func decodeAttributes(rec *domain.Record, body *yaml.Node) error {
	switch body.Kind {
	case yaml.ScalarNode:
		if body.Tag == "!!null" {
			return nil
		}
		v, err := scalarString(body)
		if err != nil {
			return err
		}
		rec.Set(shorthandAttr, v)
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(body.Content); i += 2 {
			name, val := body.Content[i].Value, body.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("attribute %q must be a scalar, got %s", name, kindName(val))
			}
			v, err := scalarString(val)
			if err != nil {
				return fmt.Errorf("attribute %q: %w", name, err)
			}
			rec.Set(name, v)
		}
		return nil
	default:
		return fmt.Errorf("attributes must be a mapping, got %s", kindName(body))
	}
}

// scalarString keeps the scalar text as written, so "1.50" or "yes" are not
// normalised by YAML typing.
func scalarString(n *yaml.Node) (string, error) {
	if n.Tag == "!!null" {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected scalar, got %s", kindName(n))
	}
	return n.Value, nil
}
