// Package validator cross-checks the status registry against the descriptor
// repository: every registered status must resolve, and every edge a
// descriptor declares must lead to a registered status.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

// Problem is one validation finding.
type Problem struct {
	Status string
	Detail string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Status, p.Detail)
}

// Validate resolves every registered status and inspects its declared edges.
// It returns all findings rather than stopping at the first.
func Validate(ctx context.Context, reg *registry.Registry, repo ports.DescriptorRepository) []Problem {
	var problems []Problem
	descriptors := make(map[string]*domain.Descriptor)

	for _, status := range reg.Statuses() {
		class, _ := reg.ClassFor(status)
		desc, err := repo.Resolve(ctx, class)
		if err != nil {
			detail := fmt.Sprintf("descriptor %q failed to load: %v", class, err)
			if hint := registry.ClassNameHint(status); hint != class {
				detail += fmt.Sprintf(" (registry maps to %q, conventional class name is %q)", class, hint)
			}
			problems = append(problems, Problem{Status: status, Detail: detail})
			continue
		}
		descriptors[status] = desc
	}

	for _, status := range sortedKeys(descriptors) {
		desc := descriptors[status]

		if desc.Platform == "" {
			problems = append(problems, Problem{Status: status, Detail: "descriptor declares no platform"})
		}

		for i, entry := range desc.Setup {
			if entry.TestFile == "" && entry.Action == "" {
				problems = append(problems, Problem{
					Status: status,
					Detail: fmt.Sprintf("setup[%d] has neither a test file nor an action", i),
				})
			}
			if entry.PreviousStatus != "" && !reg.Has(entry.PreviousStatus) {
				problems = append(problems, Problem{
					Status: status,
					Detail: fmt.Sprintf("setup[%d] requires unregistered previous status %q", i, entry.PreviousStatus),
				})
			}
		}

		for _, ev := range sortedEvents(desc) {
			tr := desc.On[ev]
			if tr.Target == "" {
				problems = append(problems, Problem{
					Status: status,
					Detail: fmt.Sprintf("transition %q has no target", ev),
				})
				continue
			}
			if !reg.Has(tr.Target) {
				problems = append(problems, Problem{
					Status: status,
					Detail: fmt.Sprintf("transition %q targets unregistered status %q", ev, tr.Target),
				})
			}
		}

		// A status requirement must itself be resolvable.
		if ref, ok := desc.Requires["status"].(string); ok && !reg.Has(ref) {
			problems = append(problems, Problem{
				Status: status,
				Detail: fmt.Sprintf("requires unregistered status %q", ref),
			})
		}
	}

	return problems
}

// Format joins findings into a single error message.
func Format(problems []Problem) string {
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = "- " + p.String()
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]*domain.Descriptor) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedEvents(desc *domain.Descriptor) []string {
	out := make([]string, 0, len(desc.On))
	for ev := range desc.On {
		out = append(out, ev)
	}
	sort.Strings(out)
	return out
}
