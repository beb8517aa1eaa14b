package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline/pkg/adapters/memory"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/registry"
)

func TestValidateCleanGraph(t *testing.T) {
	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status:   "registered",
			Platform: "web",
			Setup:    []domain.SetupEntry{{TestFile: "register.spec", Action: "register"}},
		},
		&domain.Descriptor{
			Status:   "booked",
			Platform: "web",
			Requires: map[string]any{"status": "registered"},
			Setup: []domain.SetupEntry{
				{TestFile: "book.spec", Action: "bookSlot", PreviousStatus: "registered"},
			},
		},
	)
	require.NoError(t, err)

	reg := registry.New(map[string]string{"registered": "registered", "booked": "booked"})
	assert.Empty(t, Validate(context.Background(), reg, repo))
}

func TestValidateMissingDescriptor(t *testing.T) {
	repo, err := memory.NewRepository()
	require.NoError(t, err)

	reg := registry.New(map[string]string{"booked": "booked"})
	problems := Validate(context.Background(), reg, repo)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Detail, "failed to load")
	assert.Contains(t, problems[0].Detail, `conventional class name is "Booked"`)
}

func TestValidateDanglingEdges(t *testing.T) {
	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status:   "booked",
			Platform: "web",
			Requires: map[string]any{"status": "ghost"},
			Setup: []domain.SetupEntry{
				{TestFile: "book.spec", PreviousStatus: "phantom"},
				{}, // neither test file nor action
			},
			On: map[string]domain.Transition{
				"cancel": {Target: "nowhere"},
				"noop":   {},
			},
		},
	)
	require.NoError(t, err)

	reg := registry.New(map[string]string{"booked": "booked"})
	problems := Validate(context.Background(), reg, repo)

	details := Format(problems)
	assert.Contains(t, details, `unregistered previous status "phantom"`)
	assert.Contains(t, details, "neither a test file nor an action")
	assert.Contains(t, details, `transition "cancel" targets unregistered status "nowhere"`)
	assert.Contains(t, details, `transition "noop" has no target`)
	assert.Contains(t, details, `requires unregistered status "ghost"`)
}

func TestValidateMissingPlatform(t *testing.T) {
	repo, err := memory.NewRepository(&domain.Descriptor{Status: "limbo"})
	require.NoError(t, err)

	reg := registry.New(map[string]string{"limbo": "limbo"})
	problems := Validate(context.Background(), reg, repo)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Detail, "no platform")
}
