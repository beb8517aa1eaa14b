package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stateline/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDataStoreContract verifies that a DataStore implementation adheres to
// the delta-model contract. pathFor maps a logical name to a storage path
// valid for the implementation under test.
func RunDataStoreContract(t *testing.T, store DataStore, pathFor func(name string) string) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		path := pathFor("contract-roundtrip")
		rec := &domain.Record{
			Original: map[string]any{"status": "registered", "user": map[string]any{"name": "ada"}},
			ChangeLog: []domain.ChangeEntry{
				{Label: "step-1", TestFile: "book.spec", Delta: map[string]any{"status": "booked"}, Timestamp: time.Now().UTC()},
			},
		}

		require.NoError(t, store.Save(ctx, path, rec))

		loaded, err := store.Load(ctx, path)
		require.NoError(t, err)
		snap := loaded.Snapshot()
		assert.Equal(t, "booked", domain.GlobalStatus(snap))
		name, _ := domain.Lookup(snap, "user.name")
		assert.Equal(t, "ada", name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, pathFor("contract-missing"))
		assert.ErrorIs(t, err, domain.ErrDataNotFound)
	})

	t.Run("Replay Determinism", func(t *testing.T) {
		path := pathFor("contract-replay")
		rec := &domain.Record{
			Original: map[string]any{"status": "new", "count": float64(1)},
			ChangeLog: []domain.ChangeEntry{
				{Label: "a", Delta: map[string]any{"count": float64(2)}, Timestamp: time.Now().UTC()},
				{Label: "b", Delta: map[string]any{"status": "active"}, Timestamp: time.Now().UTC()},
			},
		}
		require.NoError(t, store.Save(ctx, path, rec))

		first, err := store.Load(ctx, path)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, path, first))
		second, err := store.Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, first.Snapshot(), second.Snapshot())
	})
}
