// Package tui renders resolution reports for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/stateline/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour,
// auto-detecting light/dark background.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ReportMarkdown formats a path report as markdown, one line per chain step.
func ReportMarkdown(rep *domain.PathReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Path to `%s`\n\n", rep.Target)
	if rep.Current != "" {
		fmt.Fprintf(&sb, "Current status: `%s`\n\n", rep.Current)
	} else {
		sb.WriteString("Current status: _none_\n\n")
	}

	for i, step := range rep.Steps {
		marker := stepMarker(step.State)
		name := step.Status
		if step.Entity != "" {
			name = step.Entity + "." + name
		}
		fmt.Fprintf(&sb, "%d. %s **%s**", i+1, marker, name)
		if step.Platform != "" {
			fmt.Fprintf(&sb, " _(%s)_", step.Platform)
		}
		if step.Event != "" {
			fmt.Fprintf(&sb, " via `%s`", step.Event)
		}
		if step.Detail != "" {
			fmt.Fprintf(&sb, ": %s", step.Detail)
		}
		sb.WriteString("\n")
	}

	if len(rep.Missing) > 0 {
		sb.WriteString("\n## Unsatisfied data requirements\n\n")
		for _, m := range rep.Missing {
			fmt.Fprintf(&sb, "- `%s`: expected `%v`, got `%v`\n", m.Field, m.Expected, m.Actual)
		}
	}

	sb.WriteString("\n")
	if rep.Ready {
		sb.WriteString("**Ready.**\n")
	} else {
		fmt.Fprintf(&sb, "**%d step(s) pending.**\n", pendingCount(rep))
	}
	return sb.String()
}

func stepMarker(state domain.StepState) string {
	switch state {
	case domain.StepDone:
		return "✓"
	case domain.StepBlocked:
		return "✗"
	case domain.StepTarget:
		return "→"
	default:
		return "•"
	}
}

func pendingCount(rep *domain.PathReport) int {
	n := 0
	for _, s := range rep.Steps {
		if s.State != domain.StepDone {
			n++
		}
	}
	return n
}
