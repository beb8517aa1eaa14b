package stateline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline/pkg/adapters/memory"
	"github.com/aretw0/stateline/pkg/adapters/prompt"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

func TestNewDefaultsToConsolePrompt(t *testing.T) {
	repo, err := memory.NewRepository(&domain.Descriptor{Status: "registered"})
	require.NoError(t, err)

	eng, err := New("",
		WithRepository(repo),
		WithRegistry(registry.New(map[string]string{"registered": "registered"})),
	)
	require.NoError(t, err)

	// Unattended runs must opt out of confirmation explicitly.
	assert.IsType(t, &prompt.Console{}, eng.prompt)
}

func TestWithPromptOverridesDefault(t *testing.T) {
	repo, err := memory.NewRepository(&domain.Descriptor{Status: "registered"})
	require.NoError(t, err)

	eng, err := New("",
		WithRepository(repo),
		WithRegistry(registry.New(map[string]string{"registered": "registered"})),
		WithPrompt(prompt.Auto{Decision: ports.Proceed}),
	)
	require.NoError(t, err)

	assert.Equal(t, prompt.Auto{Decision: ports.Proceed}, eng.prompt)
}
