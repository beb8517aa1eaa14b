package stateline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/stateline/internal/orchestrator"
	"github.com/aretw0/stateline/internal/resolver"
	"github.com/aretw0/stateline/internal/statestore"
	"github.com/aretw0/stateline/pkg/adapters/loamrepo"
	"github.com/aretw0/stateline/pkg/adapters/prompt"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/observability"
	"github.com/aretw0/stateline/pkg/ports"
	"github.com/aretw0/stateline/pkg/registry"
)

// Engine is the high-level entry point. It wires the chain resolver and the
// execution orchestrator behind a simplified API.
type Engine struct {
	repo    ports.DescriptorRepository
	store   ports.DataStore
	invoker ports.ActionInvoker
	runner  ports.ProcessRunner
	prompt  ports.Prompt
	locker  ports.DistributedLocker
	metrics *observability.Metrics
	logger  *slog.Logger

	platform       string
	registryPath   string
	cachePath      string
	staticRegistry *registry.Registry
	confirmTimeout time.Duration
	maxAttempts    int

	Name string
}

// Option configures the Engine.
type Option func(*Engine)

// WithRepository injects a custom descriptor repository, bypassing the
// default Loam initialization.
func WithRepository(repo ports.DescriptorRepository) Option {
	return func(e *Engine) { e.repo = repo }
}

// WithDataStore overrides the default file-backed delta store.
func WithDataStore(store ports.DataStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithActionInvoker sets the in-session action executor. Required for
// Resolve; Plan works without it.
func WithActionInvoker(invoker ports.ActionInvoker) Option {
	return func(e *Engine) { e.invoker = invoker }
}

// WithProcessRunner sets the cross-platform subprocess runner.
func WithProcessRunner(runner ports.ProcessRunner) Option {
	return func(e *Engine) { e.runner = runner }
}

// WithPrompt sets the interactive confirmation capability. Defaults to the
// console countdown prompt; inject prompt.Auto to run unattended.
func WithPrompt(p ports.Prompt) Option {
	return func(e *Engine) { e.prompt = p }
}

// WithLocker serializes data-file writers across runner instances.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the prometheus instrumentation set.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPlatform sets the current execution platform (default "web").
func WithPlatform(platform string) Option {
	return func(e *Engine) { e.platform = platform }
}

// WithRegistryPath points at the status registry artifact. The artifact is
// reloaded at the start of every resolution run.
func WithRegistryPath(path string) Option {
	return func(e *Engine) { e.registryPath = path }
}

// WithRegistry injects a fixed registry, for embedding and tests.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) { e.staticRegistry = reg }
}

// WithDiscoveryCachePath enables the direct-transition fast path.
func WithDiscoveryCachePath(path string) Option {
	return func(e *Engine) { e.cachePath = path }
}

// WithConfirmTimeout overrides the cross-platform confirmation countdown.
func WithConfirmTimeout(d time.Duration) Option {
	return func(e *Engine) { e.confirmTimeout = d }
}

// WithMaxAttempts bounds the resolve loop.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// New initializes an Engine. By default descriptors are loaded from a Loam
// repository at descriptorDir; WithRepository skips Loam entirely, in which
// case descriptorDir may be empty.
func New(descriptorDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		platform:       "web",
		confirmTimeout: orchestrator.DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.repo == nil {
		if descriptorDir == "" {
			return nil, fmt.Errorf("descriptorDir is required when no custom repository is provided")
		}
		absPath, err := filepath.Abs(descriptorDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numeric types consistent across adapters;
		// read-only because the engine never mutates descriptors.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		typedRepo := loam.NewTypedRepository[loamrepo.DescriptorMetadata](repo)
		eng.repo = loamrepo.New(typedRepo)
	} else if descriptorDir != "" {
		eng.Name = filepath.Base(descriptorDir)
	}

	if eng.store == nil {
		storeOpts := []statestore.Option{}
		if eng.logger != nil {
			storeOpts = append(storeOpts, statestore.WithLogger(eng.logger))
		}
		eng.store = statestore.New(storeOpts...)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("engine", eng.Name)
	}
	if eng.metrics == nil {
		eng.metrics = observability.NewMetrics()
	}
	// Confirmation is the default; skipping it is an explicit choice via
	// WithPrompt(prompt.Auto{Decision: ports.Proceed}).
	if eng.prompt == nil {
		eng.prompt = prompt.NewConsole()
	}
	if eng.staticRegistry == nil && eng.registryPath == "" {
		return nil, fmt.Errorf("a registry is required: set WithRegistryPath or WithRegistry")
	}

	return eng, nil
}

// Request describes one resolution.
type Request struct {
	// Target is the desired status.
	Target string

	// DataPath is the master test data file.
	DataPath string

	// Event is the explicit transition event, typically derived from the
	// invoking test's filename.
	Event string

	// Nested marks this call as a prerequisite of a larger resolution.
	Nested bool
}

// Result is the outcome of a resolution or plan.
type Result struct {
	Ready    bool
	Partial  bool
	Executed int
	Attempts int
	RunID    string
	Chain    domain.Chain
	Report   *domain.PathReport
}

// Resolve confirms readiness for the target status or executes the chain of
// prerequisite actions needed to reach it.
func (e *Engine) Resolve(ctx context.Context, req Request) (*Result, error) {
	if e.invoker == nil {
		return nil, fmt.Errorf("an action invoker is required for Resolve: set WithActionInvoker")
	}

	orc := orchestrator.New(e.platform, e.builderFactory(), e.store, e.invoker,
		orchestrator.WithProcessRunner(e.runner),
		orchestrator.WithPrompt(e.prompt),
		orchestrator.WithLocker(e.locker),
		orchestrator.WithMetrics(e.metrics),
		orchestrator.WithLogger(e.logger),
		orchestrator.WithConfirmTimeout(e.confirmTimeout),
		orchestrator.WithMaxAttempts(e.maxAttempts),
	)

	res, err := orc.Resolve(ctx, orchestrator.Request{
		Target:   req.Target,
		DataPath: req.DataPath,
		Event:    req.Event,
		Nested:   req.Nested,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Ready: res.Ready, Partial: res.Partial,
		Executed: res.Executed, Attempts: res.Attempts,
		RunID: res.RunID, Chain: res.Chain, Report: res.Report,
	}, nil
}

// Plan builds the prerequisite chain for the target without executing
// anything: a dry run of Resolve.
func (e *Engine) Plan(ctx context.Context, req Request) (*Result, error) {
	builder, err := e.builderFactory()(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.Load(ctx, req.DataPath)
	if err != nil {
		return nil, err
	}
	data := rec.Snapshot()
	current := domain.GlobalStatus(data)

	res, err := builder.Build(ctx, resolver.Request{
		Target:  req.Target,
		Current: current,
		Data:    data,
		Event:   req.Event,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Ready:  res.Chain.Ready(),
		Chain:  res.Chain,
		Report: domain.BuildReport(req.Target, current, res.Chain, res.Missing),
	}, nil
}

// Statuses returns all registered status names.
func (e *Engine) Statuses(ctx context.Context) ([]string, error) {
	reg, err := e.loadRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Statuses(), nil
}

// Inspect resolves every registered status to its descriptor, for
// visualization and validation tools. Lookup failures are reported per
// status in the second return value rather than aborting.
func (e *Engine) Inspect(ctx context.Context) (map[string]*domain.Descriptor, map[string]error, error) {
	reg, err := e.loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	descriptors := make(map[string]*domain.Descriptor)
	failures := make(map[string]error)
	for _, status := range reg.Statuses() {
		class, _ := reg.ClassFor(status)
		desc, err := e.repo.Resolve(ctx, class)
		if err != nil {
			failures[status] = err
			continue
		}
		descriptors[status] = desc
	}
	return descriptors, failures, nil
}

// Reload discards cached descriptors.
func (e *Engine) Reload(ctx context.Context) error {
	return e.repo.Reload(ctx)
}

// Watch returns a channel signaled when the descriptor backend changes.
// Returns an error if the repository does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.repo.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current repository does not support watching")
}

// Repository returns the underlying descriptor repository.
func (e *Engine) Repository() ports.DescriptorRepository {
	return e.repo
}

// Metrics returns the engine's instrumentation set.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

func (e *Engine) loadRegistry() (*registry.Registry, error) {
	if e.staticRegistry != nil {
		return e.staticRegistry, nil
	}
	return registry.Load(e.registryPath)
}

// builderFactory reloads the registry and cache so every resolution attempt
// observes current registrations.
func (e *Engine) builderFactory() orchestrator.BuilderFactory {
	return func(ctx context.Context) (*resolver.Builder, error) {
		reg, err := e.loadRegistry()
		if err != nil {
			return nil, err
		}
		opts := []resolver.Option{
			resolver.WithPlatform(e.platform),
			resolver.WithLogger(e.logger),
		}
		if e.cachePath != "" {
			cache, err := registry.LoadCache(e.cachePath)
			if err != nil {
				e.logger.Warn("discovery cache unavailable", "err", err)
			} else if cache != nil {
				opts = append(opts, resolver.WithDiscoveryCache(cache))
			}
		}
		return resolver.NewBuilder(e.repo, reg, opts...), nil
	}
}
