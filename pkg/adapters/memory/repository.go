// Package memory provides in-memory adapters for embedding and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stateline/pkg/domain"
)

// Repository implements ports.DescriptorRepository over a map. Safe for
// concurrent use; Reload is a no-op since there is no backing store.
type Repository struct {
	mu          sync.RWMutex
	descriptors map[string]*domain.Descriptor
}

// NewRepository creates a repository from the given descriptors, keyed by
// their Status name.
func NewRepository(descriptors ...*domain.Descriptor) (*Repository, error) {
	m := make(map[string]*domain.Descriptor, len(descriptors))
	for _, d := range descriptors {
		if d.Status == "" {
			return nil, fmt.Errorf("descriptor missing status name")
		}
		if _, exists := m[d.Status]; exists {
			return nil, fmt.Errorf("duplicate descriptor: %s", d.Status)
		}
		m[d.Status] = d
	}
	return &Repository{descriptors: m}, nil
}

// Register adds or replaces a descriptor.
func (r *Repository) Register(d *domain.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.Status] = d
}

// Resolve returns the descriptor registered under the given name.
func (r *Repository) Resolve(ctx context.Context, name string) (*domain.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("descriptor not found: %s", name)
	}
	return d, nil
}

// Reload is a no-op for in-memory repositories.
func (r *Repository) Reload(ctx context.Context) error {
	return nil
}

// List returns all registered class names in deterministic order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
