package ports

import (
	"context"

	"github.com/aretw0/stateline/pkg/domain"
)

// DataStore persists test data records under the delta model. Load prefers
// the "-current" sibling over the master file; Save only ever writes the
// sibling. Returns domain.ErrDataNotFound when neither file exists.
type DataStore interface {
	Load(ctx context.Context, path string) (*domain.Record, error)
	Save(ctx context.Context, path string, rec *domain.Record) error
}
