package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stateline/pkg/domain"
)

// Store implements ports.DataStore in memory. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
}

// NewStore creates an empty in-memory data store.
func NewStore() *Store {
	return &Store{records: make(map[string]*domain.Record)}
}

// Seed installs a master snapshot under the given path, replacing any
// existing record.
func (s *Store) Seed(path string, original map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[path] = &domain.Record{Original: original}
}

// Load retrieves the record stored under path.
func (s *Store) Load(ctx context.Context, path string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[path]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	// Copy on read so callers cannot mutate stored state through the pointer.
	return copyRecord(rec), nil
}

// Save persists the record under path.
func (s *Store) Save(ctx context.Context, path string, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[path] = copyRecord(rec)
	return nil
}

func copyRecord(rec *domain.Record) *domain.Record {
	out := &domain.Record{
		Original:  domain.MergeMaps(nil, rec.Original),
		ChangeLog: make([]domain.ChangeEntry, len(rec.ChangeLog)),
	}
	for i, entry := range rec.ChangeLog {
		out.ChangeLog[i] = domain.ChangeEntry{
			Label:     entry.Label,
			TestFile:  entry.TestFile,
			Delta:     domain.MergeMaps(nil, entry.Delta),
			Timestamp: entry.Timestamp,
		}
	}
	return out
}
