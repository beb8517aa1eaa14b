package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline/pkg/domain"
)

func TestChainCounts(t *testing.T) {
	chain := domain.Chain{
		{Status: "registered", Complete: true},
		{Status: "booked"},
		{Status: "checked_in", IsTarget: true},
	}

	assert.Equal(t, 2, chain.Incomplete())
	assert.Equal(t, 1, chain.IncompletePrereqs())
	assert.False(t, chain.Ready())

	chain[1].Complete = true
	assert.Equal(t, 0, chain.IncompletePrereqs())
	assert.True(t, chain.Ready(), "a pending target step alone does not block readiness")
}

func TestChainReadyRejectsBlockedStep(t *testing.T) {
	chain := domain.Chain{
		{Status: "registered", Complete: true},
		{Status: "booked", IsTarget: true, LoadError: "descriptor missing"},
	}
	assert.Equal(t, 0, chain.IncompletePrereqs())
	assert.False(t, chain.Ready())

	blocked := chain.Blocked()
	require.NotNil(t, blocked)
	assert.Equal(t, "booked", blocked.Status)
}

func TestChainIndexOfSkipsEntitySteps(t *testing.T) {
	chain := domain.Chain{
		{Status: "confirmed", Entity: "booking"},
		{Status: "confirmed"},
	}
	assert.Equal(t, 1, chain.IndexOf("confirmed"))
	assert.Equal(t, -1, chain.IndexOf("unknown"))
}

func TestChainStepKey(t *testing.T) {
	assert.Equal(t, "booked", domain.ChainStep{Status: "booked"}.Key())
	assert.Equal(t, "booking_confirmed", domain.ChainStep{Status: "confirmed", Entity: "booking"}.Key())
}

func TestVisitAllows(t *testing.T) {
	assert.False(t, domain.Visit{}.Allows("active"))
	assert.True(t, domain.LoopReentry("active").Allows("active"))
	assert.False(t, domain.LoopReentry("active").Allows("suspended"))
}

func TestCanonicalPlatform(t *testing.T) {
	testCases := map[string]string{
		"playwright": "web",
		"Browser":    "web",
		" web ":      "web",
		"clubApp":    "club",
		"club-app":   "club",
		"ios":        "ios",
	}
	for in, want := range testCases {
		assert.Equal(t, want, domain.CanonicalPlatform(in), "input %q", in)
	}

	assert.True(t, domain.SamePlatform("playwright", "browser"))
	assert.False(t, domain.SamePlatform("web", "club"))
}
