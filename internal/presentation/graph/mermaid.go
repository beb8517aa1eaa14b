// Package graph renders the status graph as Mermaid flowchart syntax, for
// documentation and the introspection surfaces.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stateline/pkg/domain"
)

// Overlay contains dynamic chain state to visualize on top of the static
// graph.
type Overlay struct {
	CompletedStatuses []string
	Target            string
}

// GenerateMermaid produces a Mermaid flowchart from the status descriptors.
// Semantic styling:
//   - entity-scoped statuses: [[subroutine]]
//   - global statuses: [rectangle]
//   - setup edges (previousStatus -> status): solid, labeled with the action
//   - declared transitions (On): solid, labeled with the event
//   - cross-reference requirements: dotted
func GenerateMermaid(descriptors map[string]*domain.Descriptor, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		desc := descriptors[name]
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		if desc.Entity != "" {
			opener, closer = "[[", "]]"
		}

		label := name
		if desc.Platform != "" {
			label = fmt.Sprintf("%s <br/> %s", name, desc.Platform)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		// Setup edges: the declared prior status leads here.
		for _, entry := range desc.Setup {
			if entry.PreviousStatus == "" {
				continue
			}
			edgeLabel := entry.Action
			if edgeLabel == "" {
				edgeLabel = entry.TestFile
			}
			from := sanitizeMermaidID(entry.PreviousStatus)
			if edgeLabel != "" {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(edgeLabel), safeID)
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", from, safeID)
			}
		}

		// Declared event transitions.
		events := make([]string, 0, len(desc.On))
		for ev := range desc.On {
			events = append(events, ev)
		}
		sort.Strings(events)
		for _, ev := range events {
			tr := desc.On[ev]
			if tr.Target == "" {
				continue
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, escapeLabel(ev), sanitizeMermaidID(tr.Target))
		}

		// Cross-reference requirements: another status must hold first.
		fields := make([]string, 0, len(desc.Requires))
		for f := range desc.Requires {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			ref, ok := desc.Requires[f].(string)
			if !ok {
				continue
			}
			if f == "status" && hasSetupEdge(desc, ref) {
				// Already drawn as a setup edge.
				continue
			}
			if _, known := descriptors[ref]; known {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", sanitizeMermaidID(ref), escapeLabel(f), safeID)
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef done fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.CompletedStatuses {
			safeID := sanitizeMermaidID(name)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s done;\n", safeID)
			}
		}
		if overlay.Target != "" {
			fmt.Fprintf(&sb, "    class %s target;\n", sanitizeMermaidID(overlay.Target))
		}
	}

	return sb.String()
}

func hasSetupEdge(desc *domain.Descriptor, from string) bool {
	for _, entry := range desc.Setup {
		if entry.PreviousStatus == from {
			return true
		}
	}
	return false
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
