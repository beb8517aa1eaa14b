package ports

import (
	"context"

	"github.com/aretw0/stateline/pkg/domain"
)

// DescriptorRepository resolves a status class name to its static
// implication descriptor. Implementations load from a directory scan, a
// content repository, or memory; there is no hidden global cache.
type DescriptorRepository interface {
	// Resolve returns the descriptor registered under the given class name.
	Resolve(ctx context.Context, name string) (*domain.Descriptor, error)

	// Reload discards any cached descriptors so the next Resolve observes
	// the current on-disk state.
	Reload(ctx context.Context) error

	// List returns all known class names, for validation and introspection.
	List(ctx context.Context) ([]string, error)
}

// Watchable is implemented by repositories that can notify about backend
// changes, typically for hot-reload during descriptor authoring.
type Watchable interface {
	// Watch returns a channel signaled with the changed descriptor ID.
	Watch(ctx context.Context) (<-chan string, error)
}
