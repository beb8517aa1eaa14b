// Package loamrepo adapts a Loam content repository to the descriptor
// repository port. Descriptors are authored as frontmatter files (md, json,
// yaml) in a directory tree managed by Loam.
package loamrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/stateline/pkg/domain"
)

// Repository resolves status descriptors through a typed Loam repository.
type Repository struct {
	Repo *loam.TypedRepository[DescriptorMetadata]

	mu    sync.Mutex
	cache map[string]*domain.Descriptor
}

// New creates a Loam-backed descriptor repository.
func New(repo *loam.TypedRepository[DescriptorMetadata]) *Repository {
	return &Repository{
		Repo:  repo,
		cache: make(map[string]*domain.Descriptor),
	}
}

// Resolve loads the descriptor registered under the given class name.
// Resolved descriptors are cached until Reload.
func (r *Repository) Resolve(ctx context.Context, name string) (*domain.Descriptor, error) {
	r.mu.Lock()
	if d, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	doc, err := r.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	desc, err := toDescriptor(doc.ID, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = desc
	r.mu.Unlock()
	return desc, nil
}

// Reload discards cached descriptors so the next Resolve observes the
// current on-disk state.
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	r.cache = make(map[string]*domain.Descriptor)
	r.mu.Unlock()
	return nil
}

// List returns all descriptor class names in the repository, detecting
// duplicate registrations across files.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	docs, err := r.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawName := doc.Data.Status
		if rawName == "" {
			rawName = doc.ID
		}
		name := trimExtension(rawName)

		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision: status %q is defined in both %q and %q", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	return names, nil
}

// Watch implements ports.Watchable over the Loam file watcher.
func (r *Repository) Watch(ctx context.Context) (<-chan string, error) {
	events, err := r.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// A change invalidates the resolve cache before the ID is
				// passed up the chain.
				_ = r.Reload(ctx)
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func toDescriptor(docID string, meta DescriptorMetadata) (*domain.Descriptor, error) {
	status := meta.Status
	if status == "" {
		status = trimExtension(docID)
	}

	setup, err := decodeSetup(meta.Setup)
	if err != nil {
		return nil, err
	}

	desc := &domain.Descriptor{
		Status:   status,
		Platform: meta.Platform,
		Entity:   meta.Entity,
		Requires: meta.Requires,
		Setup:    setup,
	}

	if len(meta.On) > 0 {
		desc.On = make(map[string]domain.Transition, len(meta.On))
		for event, tr := range meta.On {
			desc.On[event] = domain.Transition{
				Target:    tr.Target,
				Requires:  tr.Requires,
				Platforms: tr.Platforms,
				Default:   tr.Default,
			}
		}
	}
	return desc, nil
}

// decodeSetup resolves polymorphic setup entries: strings are test-file
// shorthand, maps carry the full entry shape.
func decodeSetup(raw []any) ([]domain.SetupEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	entries := make([]domain.SetupEntry, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			entries = append(entries, domain.SetupEntry{TestFile: v})
		case map[string]any, map[any]any:
			var meta SetupMetadata
			if err := mapstructure.Decode(v, &meta); err != nil {
				return nil, fmt.Errorf("setup[%d]: %w", i, err)
			}
			entries = append(entries, domain.SetupEntry{
				TestFile:       meta.TestFile,
				Action:         meta.Action,
				PreviousStatus: meta.PreviousStatus,
				Requires:       meta.Requires,
			})
		default:
			return nil, fmt.Errorf("setup[%d]: invalid entry type %T", i, item)
		}
	}
	return entries, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
