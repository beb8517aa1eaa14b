package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline/internal/resolver"
	"github.com/aretw0/stateline/pkg/domain"
)

func TestSelectorNoCandidates(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{Status: "x"}

	_, _, ok := s.Select(desc, "y", "", nil, "web")
	assert.False(t, ok)
}

func TestSelectorSingleCandidate(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On:     map[string]domain.Transition{"go": {Target: "y"}},
	}

	ev, tr, ok := s.Select(desc, "y", "", nil, "web")
	require.True(t, ok)
	assert.Equal(t, "go", ev)
	assert.Equal(t, "y", tr.Target)
}

func TestSelectorExplicitEventWins(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On: map[string]domain.Transition{
			"fast-track": {Target: "y", Requires: map[string]any{"vip": true}},
			"standard":   {Target: "y"},
		},
	}

	ev, _, ok := s.Select(desc, "y", "fast-track", map[string]any{}, "web")
	require.True(t, ok)
	assert.Equal(t, "fast-track", ev)
}

func TestSelectorDataDrivenBeatsUnconditional(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On: map[string]domain.Transition{
			"conditional":   {Target: "y", Requires: map[string]any{"seats": 5}},
			"unconditional": {Target: "y"},
		},
	}

	ev, _, ok := s.Select(desc, "y", "", map[string]any{"seats": float64(5)}, "web")
	require.True(t, ok)
	assert.Equal(t, "conditional", ev)

	// Unsatisfied requires fall through to the unconditional transition.
	ev, _, ok = s.Select(desc, "y", "", map[string]any{"seats": float64(3)}, "web")
	require.True(t, ok)
	assert.Equal(t, "unconditional", ev)
}

func TestSelectorDeclaredDefault(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On: map[string]domain.Transition{
			"gated":    {Target: "y", Requires: map[string]any{"flag": true}},
			"fallback": {Target: "y", Default: true},
		},
	}

	ev, _, ok := s.Select(desc, "y", "", map[string]any{}, "web")
	require.True(t, ok)
	assert.Equal(t, "fallback", ev)
}

func TestSelectorPlatformAffinity(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On: map[string]domain.Transition{
			"via-club": {Target: "y", Requires: map[string]any{"a": 1}, Platforms: []string{"clubApp"}},
			"via-web":  {Target: "y", Requires: map[string]any{"b": 2}, Platforms: []string{"playwright"}},
		},
	}

	ev, _, ok := s.Select(desc, "y", "", map[string]any{}, "club")
	require.True(t, ok)
	assert.Equal(t, "via-club", ev)

	ev, _, ok = s.Select(desc, "y", "", map[string]any{}, "web")
	require.True(t, ok)
	assert.Equal(t, "via-web", ev)
}

func TestSelectorLastResortIsFirstSorted(t *testing.T) {
	s := resolver.NewSelector(nil)
	desc := &domain.Descriptor{
		Status: "x",
		On: map[string]domain.Transition{
			"zeta":  {Target: "y", Requires: map[string]any{"a": 1}},
			"alpha": {Target: "y", Requires: map[string]any{"b": 2}},
		},
	}

	ev, _, ok := s.Select(desc, "y", "", map[string]any{}, "ios")
	require.True(t, ok)
	assert.Equal(t, "alpha", ev)
}
