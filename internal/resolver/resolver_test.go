package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline/internal/resolver"
	"github.com/aretw0/stateline/pkg/adapters/memory"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

// fixtureRepo builds the membership lifecycle used across the builder tests:
// registered -> booked -> checked_in, with a premium upgrade side status and
// an entity-scoped booking confirmation.
func fixtureRepo(t *testing.T) (ports.DescriptorRepository, *registry.Registry) {
	t.Helper()
	descriptors := []*domain.Descriptor{
		{
			Status:   "registered",
			Platform: "web",
			Setup:    []domain.SetupEntry{{TestFile: "register.spec.ts", Action: "register"}},
			On: map[string]domain.Transition{
				"book":    {Target: "booked"},
				"upgrade": {Target: "premium"},
			},
		},
		{
			Status:   "booked",
			Platform: "web",
			Setup: []domain.SetupEntry{
				{TestFile: "book.spec.ts", Action: "book", PreviousStatus: "registered"},
			},
			On: map[string]domain.Transition{
				"check-in": {Target: "checked_in"},
			},
		},
		{
			Status:   "checked_in",
			Platform: "club",
			Setup: []domain.SetupEntry{
				{TestFile: "check-in.spec.ts", Action: "checkIn", PreviousStatus: "booked"},
			},
		},
		{
			Status:   "premium",
			Platform: "web",
			Setup:    []domain.SetupEntry{{TestFile: "upgrade.spec.ts", Action: "upgrade"}},
		},
		{
			Status:   "season_ticket",
			Platform: "web",
			Requires: map[string]any{"membership": "premium"},
			Setup: []domain.SetupEntry{
				{TestFile: "season-ticket.spec.ts", Action: "buySeasonTicket", PreviousStatus: "booked"},
			},
		},
		{
			Status:   "confirmed",
			Entity:   "booking",
			Platform: "club",
			Setup:    []domain.SetupEntry{{TestFile: "confirm-booking.spec.ts", Action: "confirmBooking"}},
		},
		{
			Status:   "away_game",
			Platform: "web",
			Requires: map[string]any{"booking.confirmed": true},
			Setup: []domain.SetupEntry{
				{TestFile: "away-game.spec.ts", Action: "bookAwayGame", PreviousStatus: "registered"},
			},
		},
	}

	repo, err := memory.NewRepository(descriptors...)
	require.NoError(t, err)

	classes := map[string]string{}
	for _, d := range descriptors {
		classes[d.Status] = d.Status
	}
	return repo, registry.New(classes)
}

func statuses(chain domain.Chain) []string {
	out := make([]string, len(chain))
	for i, s := range chain {
		out[i] = s.Status
	}
	return out
}

func TestBuildLinearChain(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg, resolver.WithPlatform("web"))

	res, err := b.Build(context.Background(), resolver.Request{Target: "checked_in"})
	require.NoError(t, err)

	chain := res.Chain
	assert.Equal(t, []string{"registered", "booked", "checked_in"}, statuses(chain))
	assert.Equal(t, 3, chain.Incomplete())
	assert.True(t, chain[2].IsTarget)
	assert.False(t, chain[0].IsTarget)

	// Single-hop events come from the previous step's declared transitions.
	assert.Equal(t, "book", chain[1].Event)
	assert.Equal(t, "check-in", chain[2].Event)

	assert.Equal(t, "register", chain[0].Action)
	assert.Equal(t, "check-in.spec.ts", chain[2].TestFile)
	assert.Equal(t, "club", chain[2].Platform)
}

func TestBuildMarksCompletedPrefix(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "checked_in",
		Current: "booked",
		Data:    map[string]any{"status": "booked"},
	})
	require.NoError(t, err)

	chain := res.Chain
	require.Equal(t, []string{"registered", "booked", "checked_in"}, statuses(chain))
	assert.True(t, chain[0].Complete)
	assert.True(t, chain[1].Complete)
	assert.False(t, chain[2].Complete)
	assert.Equal(t, 0, chain.IncompletePrereqs())
	assert.True(t, chain.Ready())
}

func TestBuildTargetEqualsCurrent(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "booked",
		Current: "booked",
		Data:    map[string]any{"status": "booked"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Chain.Incomplete())
	assert.True(t, res.Chain.Ready())
}

func TestBuildCrossReferenceRequirement(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{Target: "season_ticket"})
	require.NoError(t, err)

	// The unsatisfied status-valued requirement prepends its own sub-chain.
	assert.Equal(t, []string{"premium", "registered", "booked", "season_ticket"}, statuses(res.Chain))
}

func TestBuildCrossReferenceSatisfiedByData(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "season_ticket",
		Current: "registered",
		Data: map[string]any{
			"status":     "registered",
			"membership": "premium",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"registered", "booked", "season_ticket"}, statuses(res.Chain))
	assert.True(t, res.Chain[0].Complete)
	assert.Empty(t, res.Missing)
}

func TestBuildEntityRequirement(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "away_game",
		Current: "registered",
		Data:    map[string]any{"status": "registered"},
	})
	require.NoError(t, err)

	chain := res.Chain
	require.Equal(t, []string{"confirmed", "registered", "away_game"}, statuses(chain))
	assert.Equal(t, "booking", chain[0].Entity)
	assert.False(t, chain[0].Complete)
	assert.True(t, chain[1].Complete)
}

func TestBuildEntityRequirementAlreadyTrue(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "away_game",
		Current: "registered",
		Data: map[string]any{
			"status":  "registered",
			"booking": map[string]any{"confirmed": true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"registered", "away_game"}, statuses(res.Chain))
}

func TestBuildRecordsPlainMismatches(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "season_ticket",
		Current: "registered",
		Data: map[string]any{
			"status":     "registered",
			"membership": "basic",
		},
	})
	require.NoError(t, err)

	// "premium" is a registered status, so the mismatch resolves to a
	// sub-chain rather than a plain-field diagnostic.
	assert.Empty(t, res.Missing)
	assert.Contains(t, statuses(res.Chain), "premium")

	res, err = b.Build(context.Background(), resolver.Request{
		Target:  "away_game",
		Current: "registered",
		Data: map[string]any{
			"status":  "registered",
			"booking": map[string]any{"confirmed": false},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, statuses(res.Chain), "confirmed")
}

func TestBuildUnregisteredTarget(t *testing.T) {
	repo, reg := fixtureRepo(t)
	b := resolver.NewBuilder(repo, reg)

	res, err := b.Build(context.Background(), resolver.Request{Target: "vip_lounge"})
	require.NoError(t, err)

	require.Len(t, res.Chain, 1)
	step := res.Chain[0]
	assert.Equal(t, "vip_lounge", step.Status)
	assert.Contains(t, step.LoadError, "not registered")
	require.NotNil(t, res.Chain.Blocked())
}

func TestBuildCycleDiagnostic(t *testing.T) {
	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status: "frozen", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "freeze.spec.ts", PreviousStatus: "thawed"}},
		},
		&domain.Descriptor{
			Status: "thawed", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "thaw.spec.ts", PreviousStatus: "frozen"}},
		},
	)
	require.NoError(t, err)
	reg := registry.New(map[string]string{"frozen": "frozen", "thawed": "thawed"})

	b := resolver.NewBuilder(repo, reg)
	res, err := b.Build(context.Background(), resolver.Request{Target: "frozen"})
	require.NoError(t, err)

	blocked := res.Chain.Blocked()
	require.NotNil(t, blocked)
	assert.Contains(t, blocked.LoadError, "cycle")
}

func TestBuildLoopReentry(t *testing.T) {
	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status: "active", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "activate.spec.ts", Action: "activate", PreviousStatus: "suspended"}},
			On:    map[string]domain.Transition{"suspend": {Target: "suspended"}},
		},
		&domain.Descriptor{
			Status: "suspended", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "suspend.spec.ts", Action: "suspend", PreviousStatus: "active"}},
			On:    map[string]domain.Transition{"reactivate": {Target: "active"}},
		},
	)
	require.NoError(t, err)
	reg := registry.New(map[string]string{"active": "active", "suspended": "suspended"})

	b := resolver.NewBuilder(repo, reg)
	res, err := b.Build(context.Background(), resolver.Request{Target: "suspended"})
	require.NoError(t, err)

	// The declared reverse transitions make this a legitimate loop: the
	// reentry point is emitted as a terminal step instead of a cycle error.
	assert.Equal(t, []string{"suspended", "active", "suspended"}, statuses(res.Chain))
	assert.Nil(t, res.Chain.Blocked())
	assert.True(t, res.Chain[2].IsTarget)
}

func TestBuildAnnotatesEventsAcrossEntitySteps(t *testing.T) {
	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status: "home", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "home.spec.ts", Action: "goHome"}},
			On:    map[string]domain.Transition{"depart": {Target: "departed"}},
		},
		&domain.Descriptor{
			Status: "confirmed", Entity: "booking", Platform: "club",
			Setup: []domain.SetupEntry{{TestFile: "confirm-booking.spec.ts", Action: "confirmBooking"}},
		},
		&domain.Descriptor{
			Status: "departed", Platform: "web",
			Requires: map[string]any{"booking.confirmed": true},
			Setup:    []domain.SetupEntry{{TestFile: "depart.spec.ts", Action: "depart"}},
		},
	)
	require.NoError(t, err)
	reg := registry.New(map[string]string{
		"home": "home", "confirmed": "confirmed", "departed": "departed",
	})

	b := resolver.NewBuilder(repo, reg)
	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "departed",
		Current: "home",
		Data:    map[string]any{"status": "home"},
	})
	require.NoError(t, err)

	chain := res.Chain
	require.Equal(t, []string{"confirmed", "departed"}, statuses(chain))
	// The interleaved entity step must not shift the single-hop lookup off
	// the last global status.
	assert.Equal(t, "depart", chain[1].Event)
	assert.Empty(t, chain[0].Event)
}

func TestBuildUsesDiscoveryCacheForEvents(t *testing.T) {
	repo, reg := fixtureRepo(t)
	cache := &registry.DiscoveryCache{Transitions: []registry.DiscoveredTransition{
		{From: "registered", To: "booked", Event: "book-discovered"},
	}}
	b := resolver.NewBuilder(repo, reg, resolver.WithDiscoveryCache(cache))

	res, err := b.Build(context.Background(), resolver.Request{
		Target:  "checked_in",
		Current: "registered",
		Data:    map[string]any{"status": "registered"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"registered", "booked", "checked_in"}, statuses(res.Chain))
	assert.Equal(t, "book-discovered", res.Chain[1].Event)
	// No cache entry for booked -> checked_in; the selector fills it in.
	assert.Equal(t, "check-in", res.Chain[2].Event)
}
