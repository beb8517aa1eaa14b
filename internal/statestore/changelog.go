package statestore

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/aretw0/stateline/pkg/domain"
	"github.com/oklog/ulid/v2"
)

// Shared monotonic entropy so labels minted within the same millisecond
// still sort in append order. The reader is not safe for concurrent use.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newLabel(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// AppendChange records one delta on the changelog with a sortable label.
func AppendChange(rec *domain.Record, testFile string, delta map[string]any) domain.ChangeEntry {
	now := time.Now().UTC()
	entry := domain.ChangeEntry{
		Label:     newLabel(now),
		TestFile:  testFile,
		Delta:     delta,
		Timestamp: now,
	}
	rec.ChangeLog = append(rec.ChangeLog, entry)
	return entry
}
