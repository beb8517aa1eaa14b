// Package resolver computes the ordered prerequisite chain from the current
// persisted status to a requested target status, and partitions chains into
// platform segments for the orchestrator.
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

// Builder recursively resolves prerequisite chains against a registry and a
// descriptor repository. Builders are cheap; create one per resolution run.
type Builder struct {
	repo     ports.DescriptorRepository
	reg      *registry.Registry
	cache    *registry.DiscoveryCache
	selector *Selector
	platform string
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithDiscoveryCache enables the direct-transition fast path.
func WithDiscoveryCache(cache *registry.DiscoveryCache) Option {
	return func(b *Builder) { b.cache = cache }
}

// WithPlatform sets the current execution platform used for transition
// platform affinity.
func WithPlatform(platform string) Option {
	return func(b *Builder) { b.platform = platform }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a chain builder.
func NewBuilder(repo ports.DescriptorRepository, reg *registry.Registry, opts ...Option) *Builder {
	b := &Builder{
		repo:   repo,
		reg:    reg,
		logger: slog.New(discardHandler()),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.selector = NewSelector(b.logger)
	return b
}

// Request describes one chain build.
type Request struct {
	// Target is the desired status.
	Target string

	// Current is the persisted global status.
	Current string

	// Data is the effective test data snapshot.
	Data map[string]any

	// Event is the caller-supplied explicit transition event, typically
	// derived from the invoking test's filename.
	Event string
}

// Resolution is the product of one build: the ordered chain plus every
// plain data requirement that disagrees with the snapshot.
type Resolution struct {
	Chain   domain.Chain
	Missing []domain.Mismatch
}

// Build computes the prerequisite chain for the request. Descriptor and
// registry lookup failures never abort the build; they are recorded on the
// affected step so the full diagnostic chain stays printable.
func (b *Builder) Build(ctx context.Context, req Request) (*Resolution, error) {
	st := &buildState{
		data:    req.Data,
		visited: make(map[string]bool),
	}

	chain := b.chainFor(ctx, st, params{
		status:   req.Target,
		current:  req.Current,
		visit:    domain.Visit{},
		isTarget: true,
		event:    req.Event,
	})

	b.markComplete(chain, req.Current, st.data)
	b.annotateEvents(ctx, chain, req.Current, req.Event, st.data)

	return &Resolution{Chain: chain, Missing: st.missing}, nil
}

// buildState is shared across one recursive build.
type buildState struct {
	data    map[string]any
	visited map[string]bool
	missing []domain.Mismatch
}

// params carries the per-branch recursion arguments.
type params struct {
	status   string
	current  string
	entity   string
	visit    domain.Visit
	isTarget bool
	event    string
}

// chainFor resolves a status name to its descriptor and recurses. Lookup
// failures become a diagnostic step instead of an error.
func (b *Builder) chainFor(ctx context.Context, st *buildState, p params) domain.Chain {
	desc, loadErr := b.resolve(ctx, p.status, p.entity)
	if loadErr != "" {
		return domain.Chain{{
			Status:    p.status,
			Entity:    p.entity,
			IsTarget:  p.isTarget,
			LoadError: loadErr,
		}}
	}
	if desc.Entity == "" && p.entity != "" {
		clone := *desc
		clone.Entity = p.entity
		desc = &clone
	}
	return b.build(ctx, st, desc, p)
}

func (b *Builder) build(ctx context.Context, st *buildState, desc *domain.Descriptor, p params) domain.Chain {
	key := visitKey(desc)
	if st.visited[key] {
		if p.visit.Allows(desc.Status) {
			// Legitimate loop reentry: emit the step as a terminal
			// prerequisite without expanding it again.
			return domain.Chain{b.stepFor(desc, st, p)}
		}
		b.logger.Debug("cycle detected, aborting branch", "status", desc.Status, "entity", desc.Entity)
		return domain.Chain{{
			Status:    desc.Status,
			Entity:    desc.Entity,
			Platform:  desc.Platform,
			LoadError: fmt.Sprintf("cycle: status %q already on the resolution path", desc.Status),
		}}
	}
	st.visited[key] = true

	var chain domain.Chain

	// Cross-reference requirements: fields whose required value names
	// another registered global status resolve to a prepended sub-chain.
	for _, field := range sortedKeys(desc.Requires) {
		want := desc.Requires[field]
		name, isStatusRef := want.(string)
		if isStatusRef && b.reg.Has(name) && desc.Entity == "" {
			if name == p.current {
				continue
			}
			if actual, _ := domain.Lookup(st.data, field); domain.FieldMatch(want, actual) {
				continue
			}
			sub := b.chainFor(ctx, st, params{
				status:  name,
				current: p.current,
				event:   "",
			})
			chain = append(sub, chain...)
			continue
		}

		// Entity-scoped boolean requirement ("booking.confirmed": true):
		// resolve the entity's own status chain in its own namespace.
		if flag, isBool := want.(bool); isBool && flag && strings.Contains(field, ".") {
			if actual, _ := domain.Lookup(st.data, field); domain.Truthy(actual) {
				continue
			}
			entity, entityStatus, _ := strings.Cut(field, ".")
			sub := b.chainFor(ctx, st, params{
				status:  entityStatus,
				current: domain.EntityStatus(st.data, entity),
				entity:  entity,
			})
			chain = append(chain, sub...)
			continue
		}

		// Plain data requirement: record the mismatch for diagnostics and
		// optional interactive correction.
		if actual, found := domain.Lookup(st.data, field); !domain.FieldMatch(want, actual) {
			st.missing = append(st.missing, domain.Mismatch{
				Field: field, Expected: want, Actual: actual, Present: found,
			})
		}
	}

	// Previous-status requirement via the applicable setup entry. The
	// recursion continues through the current status so the finished prefix
	// stays in the chain, marked complete.
	entry := b.selectSetup(desc, st.data, p)
	if entry != nil && entry.PreviousStatus != "" {
		visit := domain.Visit{}
		if _, _, ok := b.selector.Select(desc, entry.PreviousStatus, "", st.data, b.platform); ok {
			// The target declares a transition back to its prerequisite:
			// a legitimate loop edge, so the sub-branch may re-enter it.
			visit = domain.LoopReentry(entry.PreviousStatus)
		}
		sub := b.chainFor(ctx, st, params{
			status:  entry.PreviousStatus,
			current: p.current,
			entity:  p.entity,
			visit:   visit,
		})
		chain = append(chain, sub...)
	}

	chain = append(chain, b.stepFor(desc, st, p))
	return chain
}

// stepFor materializes the chain step for a descriptor using its selected
// setup entry.
func (b *Builder) stepFor(desc *domain.Descriptor, st *buildState, p params) domain.ChainStep {
	step := domain.ChainStep{
		Status:   desc.Status,
		Platform: desc.Platform,
		Entity:   desc.Entity,
		IsTarget: p.isTarget,
	}
	if entry := b.selectSetup(desc, st.data, p); entry != nil {
		step.Action = entry.Action
		step.TestFile = entry.TestFile
	}
	return step
}

// selectSetup picks which SetupEntry applies, mirroring the transition
// selection priorities: explicit intent, data-driven, unconditional,
// current-status affinity, then first.
func (b *Builder) selectSetup(desc *domain.Descriptor, data map[string]any, p params) *domain.SetupEntry {
	if len(desc.Setup) == 0 {
		return nil
	}
	if len(desc.Setup) == 1 {
		return &desc.Setup[0]
	}

	if p.event != "" {
		for i := range desc.Setup {
			if eventFromTestFile(desc.Setup[i].TestFile) == p.event {
				return &desc.Setup[i]
			}
		}
	}
	for i := range desc.Setup {
		if len(desc.Setup[i].Requires) > 0 && domain.Satisfied(desc.Setup[i].Requires, data) {
			return &desc.Setup[i]
		}
	}
	for i := range desc.Setup {
		if len(desc.Setup[i].Requires) == 0 && desc.Setup[i].PreviousStatus == p.current {
			return &desc.Setup[i]
		}
	}
	for i := range desc.Setup {
		if len(desc.Setup[i].Requires) == 0 {
			return &desc.Setup[i]
		}
	}
	b.logger.Warn("ambiguous setup selection, falling back to first entry",
		"status", desc.Status, "entries", len(desc.Setup))
	return &desc.Setup[0]
}

// markComplete applies the completion rules: every global step at or before
// the current status index is complete; entity-scoped steps are judged
// independently against the entity's own persisted status.
func (b *Builder) markComplete(chain domain.Chain, current string, data map[string]any) {
	idx := chain.IndexOf(current)
	entityIdx := make(map[string]int)
	for _, step := range chain {
		if step.Entity != "" {
			status := domain.EntityStatus(data, step.Entity)
			if _, seen := entityIdx[step.Entity]; !seen {
				entityIdx[step.Entity] = chainIndexOfEntity(chain, step.Entity, status)
			}
		}
	}

	pos := make(map[string]int)
	for i := range chain {
		step := &chain[i]
		if step.Entity != "" {
			cur := entityIdx[step.Entity]
			if cur >= 0 && pos[step.Entity] <= cur {
				step.Complete = true
			}
			// Entity steps can also be satisfied by the global status when
			// the entity rides the same lifecycle.
			if step.Status == current {
				step.Complete = true
			}
			pos[step.Entity]++
			continue
		}
		if idx >= 0 && i <= idx {
			step.Complete = true
		}
	}
}

func chainIndexOfEntity(chain domain.Chain, entity, status string) int {
	if status == "" {
		return -1
	}
	n := -1
	i := 0
	for _, s := range chain {
		if s.Entity != entity {
			continue
		}
		if s.Status == status {
			n = i
		}
		i++
	}
	return n
}

// annotateEvents fills in the single-hop transition event for each step,
// consulting the discovery cache first and the previous step's descriptor
// otherwise. Best effort: annotation failures are ignored.
func (b *Builder) annotateEvents(ctx context.Context, chain domain.Chain, current, explicitEvent string, data map[string]any) {
	prev := current
	for i := range chain {
		step := &chain[i]
		// Entity steps live in their own namespace and never move the
		// global status, so they must not shift the lookup source.
		if step.Entity != "" {
			continue
		}
		if step.LoadError != "" {
			prev = step.Status
			continue
		}
		if ev, ok := b.cache.DirectEvent(prev, step.Status); ok {
			step.Event = ev
			prev = step.Status
			continue
		}
		if desc, loadErr := b.resolve(ctx, prev, ""); loadErr == "" {
			if ev, _, ok := b.selector.Select(desc, step.Status, explicitEvent, data, b.platform); ok {
				step.Event = ev
			}
		}
		prev = step.Status
	}
}

// resolve maps a status name through the registry to its descriptor.
// Entity statuses try the namespaced registration first.
func (b *Builder) resolve(ctx context.Context, status, entity string) (*domain.Descriptor, string) {
	names := []string{status}
	if entity != "" {
		names = []string{entity + "_" + status, status}
	}
	var lastErr string
	for _, name := range names {
		class, ok := b.reg.ClassFor(name)
		if !ok {
			lastErr = fmt.Sprintf("status %q: %v", name, domain.ErrStatusNotRegistered)
			continue
		}
		desc, err := b.repo.Resolve(ctx, class)
		if err != nil {
			lastErr = fmt.Sprintf("descriptor %q: %v", class, err)
			continue
		}
		return desc, ""
	}
	return nil, lastErr
}

func visitKey(desc *domain.Descriptor) string {
	if desc.Entity != "" {
		return desc.Entity + "_" + desc.Status
	}
	return desc.Status
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// eventFromTestFile derives the implied event name from a test filename:
// "upgrade-membership.spec.ts" -> "upgrade-membership".
func eventFromTestFile(testFile string) string {
	base := testFile
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
