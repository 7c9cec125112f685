package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
)

// ParseGoal builds a goal record from command-line arguments: the rule-set
// name followed by name=value attributes. No arguments yields nil, which
// selects the default goal of the library.
func ParseGoal(args []string) (*domain.Record, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if strings.Contains(args[0], "=") {
		return nil, fmt.Errorf("goal must start with a rule-set name, got %q", args[0])
	}

	goal := domain.NewRecord(args[0])
	for _, arg := range args[1:] {
		name, value, err := splitPair(arg)
		if err != nil {
			return nil, err
		}
		goal.Set(name, value)
	}
	return goal, nil
}

// ParseVars turns name=value pairs into initial run variables.
func ParseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		vars[name] = value
	}
	return vars, nil
}

func splitPair(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", s)
	}
	return name, value, nil
}
