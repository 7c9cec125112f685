package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
	Failed       bool
}

// OverlayFromSnapshot marks the rule sets that fired during a run and its
// top-level goal.
func OverlayFromSnapshot(snap *domain.Snapshot) *GraphOverlay {
	o := &GraphOverlay{Failed: snap.Outcome != domain.OutcomeDone}
	for _, f := range snap.Fired {
		o.VisitedNodes = append(o.VisitedNodes, f.RuleSet)
	}
	if snap.Goal != nil {
		o.CurrentNode = snap.Goal.Kind
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the sub-goal calls of a
// library. Each rule set is a node, each sub-goal action an edge labelled
// with the calling rule. Shapes:
// - Default goal: ((Circle))
// - Rule set calling sub-goals: [[Subroutine]]
// - Leaf rule set: [Rectangle]
func GenerateMermaid(lib *domain.Library, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var start string
	if lib.DefaultGoal != nil {
		start = lib.DefaultGoal.Kind
	}

	for _, rs := range lib.RuleSets() {
		safeID := sanitizeMermaidID(rs.Name)
		edges := subGoalEdges(lib, rs)

		opener, closer := "[", "]"
		switch {
		case rs.Name == start:
			opener, closer = "((", "))"
		case len(edges) > 0:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, rs.Name, closer))

		for _, e := range edges {
			label := strings.ReplaceAll(e.rule, "\"", "'")
			arrow := fmt.Sprintf("-- \"%s\" -->", label)
			if e.self {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.to)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#c8e6c9,stroke:#2e7d32,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" && lib.Has(id) {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			class := "current"
			if overlay.Failed {
				class = "failed"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(overlay.CurrentNode), class))
		}
	}

	return sb.String()
}

type edge struct {
	rule string
	to   string
	self bool
}

// subGoalEdges lists one edge per distinct (rule, sub-goal) pair in rule order.
func subGoalEdges(lib *domain.Library, rs *domain.RuleSet) []edge {
	var out []edge
	seen := make(map[[2]string]bool)
	for _, rule := range rs.Rules {
		for _, action := range rule.Actions {
			if !lib.Has(action.Kind) {
				continue
			}
			key := [2]string{rule.ID, action.Kind}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, edge{rule: rule.ID, to: action.Kind, self: action.Kind == rs.Name})
		}
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
