package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stateline/pkg/domain"
)

func sampleDescriptors() map[string]*domain.Descriptor {
	return map[string]*domain.Descriptor{
		"registered": {
			Status:   "registered",
			Platform: "web",
			Setup:    []domain.SetupEntry{{TestFile: "register.spec", Action: "register"}},
		},
		"booked": {
			Status:   "booked",
			Platform: "web",
			Requires: map[string]any{"status": "registered"},
			Setup: []domain.SetupEntry{
				{TestFile: "book.spec", Action: "bookSlot", PreviousStatus: "registered"},
			},
			On: map[string]domain.Transition{
				"cancel": {Target: "canceled"},
			},
		},
		"club-member": {
			Status:   "club-member",
			Platform: "club",
			Entity:   "membership",
			Requires: map[string]any{"club.joined": "registered"},
		},
	}
}

func TestGenerateMermaidNodesAndEdges(t *testing.T) {
	out := GenerateMermaid(sampleDescriptors(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `registered["registered <br/> web"]`)
	// Entity-scoped statuses render as subroutines, dashes are sanitized.
	assert.Contains(t, out, `club_member[["club-member <br/> club"]]`)
	// Setup edge with the action as label.
	assert.Contains(t, out, `registered -- "bookSlot" --> booked`)
	// Declared event transition.
	assert.Contains(t, out, `booked -- "cancel" --> canceled`)
	// Cross-reference requirement as a dotted edge.
	assert.Contains(t, out, `registered -. "club.joined" .-> club_member`)
}

func TestGenerateMermaidSkipsDuplicateStatusEdge(t *testing.T) {
	out := GenerateMermaid(sampleDescriptors(), nil)

	// The requires.status edge is already covered by the setup edge.
	assert.NotContains(t, out, `registered -. "status" .-> booked`)
}

func TestGenerateMermaidOverlay(t *testing.T) {
	out := GenerateMermaid(sampleDescriptors(), &Overlay{
		CompletedStatuses: []string{"registered", "registered"},
		Target:            "booked",
	})

	assert.Contains(t, out, "classDef done")
	assert.Contains(t, out, "class booked target;")
	assert.Equal(t, 1, strings.Count(out, "class registered done;"), "visited statuses are deduplicated")
}
