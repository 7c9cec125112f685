package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
)

// RunReport renders a snapshot as markdown: a summary, the fired rules in
// order and the final variables.
func RunReport(snap *domain.Snapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run %s\n\n", snap.ID)
	fmt.Fprintf(&sb, "- **Goal:** `%s`\n", snap.Goal)
	fmt.Fprintf(&sb, "- **Outcome:** %s %s\n", outcomeIcon(snap.Outcome), snap.Outcome)
	if snap.Reason != "" {
		fmt.Fprintf(&sb, "- **Reason:** %s\n", snap.Reason)
	}
	fmt.Fprintf(&sb, "- **Duration:** %s\n", snap.Duration().Round(time.Millisecond))

	if len(snap.Fired) > 0 {
		sb.WriteString("\n## Fired rules\n\n")
		sb.WriteString("| Tick | Rule set | Rule |\n|---:|---|---|\n")
		for _, f := range snap.Fired {
			indent := strings.Repeat("↳ ", f.Depth)
			fmt.Fprintf(&sb, "| %d | %s%s | %s |\n", f.Tick, indent, f.RuleSet, f.RuleID)
		}
	}

	if len(snap.Variables) > 0 {
		names := make([]string, 0, len(snap.Variables))
		for k := range snap.Variables {
			names = append(names, k)
		}
		sort.Strings(names)

		sb.WriteString("\n## Variables\n\n")
		sb.WriteString("| Name | Value |\n|---|---|\n")
		for _, k := range names {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", k, escapeCell(snap.Variables[k]))
		}
	}
	return sb.String()
}

func outcomeIcon(o domain.Outcome) string {
	switch o {
	case domain.OutcomeDone:
		return "✅"
	case domain.OutcomeFailed:
		return "❌"
	default:
		return "⚠️"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
