package stateline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/pkg/adapters/memory"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

type statusInvoker struct {
	calls []string
}

func (s *statusInvoker) Invoke(ctx context.Context, call ports.ActionCall) (*ports.ActionResult, error) {
	s.calls = append(s.calls, call.Step.Status)
	return &ports.ActionResult{Delta: map[string]any{"status": call.Step.Status}}, nil
}

func newTestEngine(t *testing.T, opts ...stateline.Option) (*stateline.Engine, *memory.Store) {
	t.Helper()

	repo, err := memory.NewRepository(
		&domain.Descriptor{
			Status: "registered", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "register.spec.ts", Action: "register"}},
			On:    map[string]domain.Transition{"book": {Target: "booked"}},
		},
		&domain.Descriptor{
			Status: "booked", Platform: "web",
			Setup: []domain.SetupEntry{{TestFile: "book.spec.ts", Action: "book", PreviousStatus: "registered"}},
		},
	)
	require.NoError(t, err)

	store := memory.NewStore()
	store.Seed("member.json", map[string]any{"status": "registered"})

	base := []stateline.Option{
		stateline.WithRepository(repo),
		stateline.WithDataStore(store),
		stateline.WithRegistry(registry.New(map[string]string{
			"registered": "registered",
			"booked":     "booked",
			"phantom":    "phantom",
		})),
	}
	eng, err := stateline.New("", append(base, opts...)...)
	require.NoError(t, err)
	return eng, store
}

func TestNewRequiresRegistry(t *testing.T) {
	repo, err := memory.NewRepository(&domain.Descriptor{Status: "registered"})
	require.NoError(t, err)

	_, err = stateline.New("", stateline.WithRepository(repo))
	assert.ErrorContains(t, err, "registry")
}

func TestNewRequiresDescriptorDirWithoutRepository(t *testing.T) {
	_, err := stateline.New("", stateline.WithRegistry(registry.New(nil)))
	assert.ErrorContains(t, err, "descriptorDir")
}

func TestPlanIsSideEffectFree(t *testing.T) {
	eng, store := newTestEngine(t)

	res, err := eng.Plan(context.Background(), stateline.Request{
		Target:   "booked",
		DataPath: "member.json",
	})
	require.NoError(t, err)

	assert.True(t, res.Ready, "only the target step is pending")
	require.Len(t, res.Chain, 2)
	assert.True(t, res.Chain[0].Complete)
	assert.False(t, res.Chain[1].Complete)
	require.NotNil(t, res.Report)
	assert.Equal(t, "registered", res.Report.Current)

	rec, err := store.Load(context.Background(), "member.json")
	require.NoError(t, err)
	assert.Empty(t, rec.ChangeLog)
}

func TestResolveRequiresInvoker(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.Resolve(context.Background(), stateline.Request{Target: "booked", DataPath: "member.json"})
	assert.ErrorContains(t, err, "action invoker")
}

func TestResolveExecutesChain(t *testing.T) {
	invoker := &statusInvoker{}
	eng, store := newTestEngine(t, stateline.WithActionInvoker(invoker))
	store.Seed("member.json", map[string]any{})

	res, err := eng.Resolve(context.Background(), stateline.Request{
		Target:   "booked",
		DataPath: "member.json",
	})
	require.NoError(t, err)

	assert.True(t, res.Ready)
	assert.Equal(t, []string{"registered"}, invoker.calls)

	rec, err := store.Load(context.Background(), "member.json")
	require.NoError(t, err)
	assert.Equal(t, "registered", domain.GlobalStatus(rec.Snapshot()))
}

func TestStatuses(t *testing.T) {
	eng, _ := newTestEngine(t)
	statuses, err := eng.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"booked", "phantom", "registered"}, statuses)
}

func TestInspectReportsLookupFailures(t *testing.T) {
	eng, _ := newTestEngine(t)
	descriptors, failures, err := eng.Inspect(context.Background())
	require.NoError(t, err)

	assert.Len(t, descriptors, 2)
	require.Len(t, failures, 1)
	assert.Contains(t, failures, "phantom")
}

func TestWatchUnsupportedRepository(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.Watch(context.Background())
	assert.ErrorContains(t, err, "does not support watching")
}
