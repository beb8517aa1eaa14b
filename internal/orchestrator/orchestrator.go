// Package orchestrator drives the execution of incomplete prerequisite
// chains: in-session actions for same-platform segments, confirmed
// subprocess runs for cross-platform segments, and re-resolution until the
// target is ready or the chain is stuck.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/stateline/internal/resolver"
	"github.com/aretw0/stateline/internal/statestore"
	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/observability"
	"github.com/aretw0/stateline/pkg/ports"
)

// DefaultConfirmTimeout is the countdown before a cross-platform execution
// proceeds without an explicit answer.
const DefaultConfirmTimeout = 10 * time.Second

// lockTTL bounds how long a crashed runner can hold the data file lock.
const lockTTL = 2 * time.Minute

// BuilderFactory creates a fresh chain builder for one resolution attempt.
// The registry is reloaded behind this so every attempt observes current
// registrations.
type BuilderFactory func(ctx context.Context) (*resolver.Builder, error)

// Orchestrator resolves exactly one target status per Resolve call,
// synchronously, against a single live execution session.
type Orchestrator struct {
	newBuilder BuilderFactory
	store      ports.DataStore
	invoker    ports.ActionInvoker
	runner     ports.ProcessRunner
	prompt     ports.Prompt
	locker     ports.DistributedLocker
	metrics    *observability.Metrics
	logger     *slog.Logger

	platform       string
	confirmTimeout time.Duration
	maxAttempts    int
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithProcessRunner sets the cross-platform subprocess runner.
func WithProcessRunner(r ports.ProcessRunner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithPrompt sets the interactive confirmation capability.
func WithPrompt(p ports.Prompt) Option {
	return func(o *Orchestrator) { o.prompt = p }
}

// WithLocker guards the data file against concurrent runner instances.
func WithLocker(l ports.DistributedLocker) Option {
	return func(o *Orchestrator) { o.locker = l }
}

// WithMetrics sets the instrumentation set.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithConfirmTimeout overrides the cross-platform confirmation countdown.
func WithConfirmTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.confirmTimeout = d }
}

// WithMaxAttempts bounds the resolve loop independently of the
// strictly-decreasing progress check.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) { o.maxAttempts = n }
}

// New creates an orchestrator for the given execution platform.
func New(platform string, newBuilder BuilderFactory, store ports.DataStore, invoker ports.ActionInvoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		newBuilder:     newBuilder,
		store:          store,
		invoker:        invoker,
		metrics:        observability.NewMetrics(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		platform:       platform,
		confirmTimeout: DefaultConfirmTimeout,
		maxAttempts:    25,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request describes one resolution.
type Request struct {
	// Target is the desired status.
	Target string

	// DataPath is the master test data file; the delta sibling is derived
	// from it.
	DataPath string

	// Event is the explicit transition event derived from the invoking
	// test's filename.
	Event string

	// Nested marks this call as a prerequisite of a larger resolution. A
	// cross-platform segment then yields a partial result instead of a
	// subprocess run.
	Nested bool
}

// Result is the outcome of a successful (ready or partial) resolution.
type Result struct {
	Ready    bool
	Partial  bool
	Executed int
	Attempts int
	RunID    string
	Chain    domain.Chain
	Report   *domain.PathReport
}

// Resolve inspects persisted data and either confirms readiness or executes
// the chain of prior actions needed to reach the target.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID, "target", req.Target, "platform", o.platform)
	start := time.Now()
	defer func() { o.metrics.ResolveDuration.Observe(time.Since(start).Seconds()) }()

	if o.locker != nil {
		unlock, err := o.locker.Lock(ctx, req.DataPath, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire data lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release data lock", "err", err)
			}
		}()
	}

	executed := 0
	prevIncomplete := -1
	correctionOffered := false

	for attempt := 1; ; attempt++ {
		builder, err := o.newBuilder(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := o.store.Load(ctx, req.DataPath)
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
		chain := res.Chain
		o.metrics.ChainLength.Observe(float64(len(chain)))
		report := domain.BuildReport(req.Target, current, chain, res.Missing)

		incomplete := chain.IncompletePrereqs()
		logger.Info("chain resolved",
			"attempt", attempt, "steps", len(chain), "incomplete", incomplete, "current", current)

		if blocked := chain.Blocked(); blocked != nil {
			o.metrics.Resolutions.WithLabelValues("failed").Inc()
			return nil, &domain.ConfigurationError{Status: blocked.Status, Reason: blocked.LoadError}
		}

		// Plain data mismatches are offered for automatic correction once
		// per run: on confirmation the required values are written as one
		// changelog delta and the chain is re-resolved against them.
		if len(res.Missing) > 0 && !req.Nested && o.prompt != nil && !correctionOffered {
			correctionOffered = true
			if delta, ok := correctionDelta(res.Missing); ok {
				decision, err := o.prompt.Confirm(ctx, correctionMessage(res.Missing), o.confirmTimeout)
				if err != nil {
					return nil, fmt.Errorf("correction prompt: %w", err)
				}
				if decision == ports.Proceed {
					if err := o.persistDelta(ctx, req.DataPath, "", delta); err != nil {
						return nil, err
					}
					logger.Info("applied required field values", "fields", len(res.Missing))
					continue
				}
				logger.Info("field correction declined, mismatches remain", "fields", len(res.Missing))
			}
		}

		if incomplete == 0 {
			o.metrics.Resolutions.WithLabelValues("ready").Inc()
			return &Result{
				Ready: true, Executed: executed, Attempts: attempt,
				RunID: runID, Chain: chain, Report: report,
			}, nil
		}

		if prevIncomplete >= 0 && incomplete >= prevIncomplete {
			o.metrics.Resolutions.WithLabelValues("stuck").Inc()
			return nil, &domain.StuckError{Target: req.Target, Chain: chain}
		}
		prevIncomplete = incomplete

		if o.maxAttempts > 0 && attempt >= o.maxAttempts {
			o.metrics.Resolutions.WithLabelValues("stuck").Inc()
			return nil, &domain.StuckError{Target: req.Target, Chain: chain}
		}

		seg := resolver.FirstIncomplete(resolver.Segments(chain))
		if seg == nil {
			// Incomplete steps but no incomplete segment cannot happen;
			// treat it as stuck rather than looping.
			o.metrics.Resolutions.WithLabelValues("stuck").Inc()
			return nil, &domain.StuckError{Target: req.Target, Chain: chain}
		}

		if domain.SamePlatform(seg.Platform, o.platform) {
			n, err := o.runInSession(ctx, logger, seg, req)
			if err != nil {
				o.metrics.Resolutions.WithLabelValues("failed").Inc()
				return nil, err
			}
			executed += n
			continue
		}

		if req.Nested {
			o.metrics.Resolutions.WithLabelValues("partial").Inc()
			logger.Info("cross-platform segment left to top-level caller", "segment_platform", seg.Platform)
			return &Result{
				Partial: true, Executed: executed, Attempts: attempt,
				RunID: runID, Chain: chain, Report: report,
			}, nil
		}

		n, err := o.runCrossPlatform(ctx, logger, seg)
		if err != nil {
			return nil, err
		}
		executed += n
	}
}

// runInSession executes every incomplete non-target step of a same-platform
// segment in-process, reusing the live driver session. Data writes only
// happen after an action signals success.
func (o *Orchestrator) runInSession(ctx context.Context, logger *slog.Logger, seg *domain.Segment, req Request) (int, error) {
	executed := 0
	for _, step := range seg.Steps {
		if step.Complete || step.IsTarget {
			continue
		}

		logger.Info("executing prerequisite in session", "status", step.Status, "action", step.Action, "test_file", step.TestFile)
		result, err := o.invoker.Invoke(ctx, ports.ActionCall{
			Step:           step,
			DataPath:       req.DataPath,
			IsPrerequisite: true,
		})
		if err != nil {
			return executed, &domain.ExecutionError{Step: step, Err: err}
		}

		if result != nil {
			if result.Save != nil {
				if err := result.Save(ctx); err != nil {
					return executed, &domain.ExecutionError{Step: step, Err: err}
				}
			}
			if len(result.Delta) > 0 {
				if err := o.persistDelta(ctx, req.DataPath, step.TestFile, result.Delta); err != nil {
					return executed, &domain.ExecutionError{Step: step, Err: err}
				}
			}
		}

		if err := o.verifyPostCondition(ctx, req.DataPath, step); err != nil {
			return executed, err
		}

		o.metrics.StepsExecuted.WithLabelValues(domain.CanonicalPlatform(step.Platform)).Inc()
		executed++
	}
	return executed, nil
}

// runCrossPlatform confirms with the user, then spawns the other platform's
// test runner for each pending step of the segment.
func (o *Orchestrator) runCrossPlatform(ctx context.Context, logger *slog.Logger, seg *domain.Segment) (int, error) {
	pending := pendingSteps(seg)

	if o.prompt != nil {
		msg := crossPlatformMessage(seg.Platform, pending)
		decision, err := o.prompt.Confirm(ctx, msg, o.confirmTimeout)
		if err != nil {
			return 0, fmt.Errorf("confirmation prompt: %w", err)
		}
		if decision == ports.Cancel {
			o.metrics.Resolutions.WithLabelValues("canceled").Inc()
			return 0, &domain.CrossPlatformBlockedError{Platform: seg.Platform, Steps: pending}
		}
	}

	if o.runner == nil {
		return 0, &domain.CrossPlatformBlockedError{Platform: seg.Platform, Steps: pending}
	}

	executed := 0
	for _, step := range pending {
		logger.Info("spawning cross-platform runner", "segment_platform", seg.Platform, "test_file", step.TestFile)
		result, err := o.runner.Run(ctx, seg.Platform, step.TestFile)
		if err != nil {
			o.metrics.SubprocessRuns.WithLabelValues(seg.Platform, "error").Inc()
			o.metrics.Resolutions.WithLabelValues("failed").Inc()
			return executed, &domain.ExecutionError{Step: step, Err: err}
		}
		if !result.Success() {
			o.metrics.SubprocessRuns.WithLabelValues(seg.Platform, "failure").Inc()
			o.metrics.Resolutions.WithLabelValues("failed").Inc()
			return executed, &domain.ExecutionError{
				Step: step,
				Err:  fmt.Errorf("runner exited with code %d", result.Code),
			}
		}
		o.metrics.SubprocessRuns.WithLabelValues(seg.Platform, "success").Inc()
		executed++
	}
	return executed, nil
}

// persistDelta appends the action's mutations to the changelog and saves
// the record through the store (which writes the delta sibling only).
func (o *Orchestrator) persistDelta(ctx context.Context, path, testFile string, delta map[string]any) error {
	rec, err := o.store.Load(ctx, path)
	if err != nil {
		return err
	}
	statestore.AppendChange(rec, testFile, delta)
	return o.store.Save(ctx, path, rec)
}

// verifyPostCondition checks that the persisted global status reached the
// executed step's status. Entity steps are judged by the overall progress
// check instead: their flags may legitimately change without a status move.
func (o *Orchestrator) verifyPostCondition(ctx context.Context, path string, step domain.ChainStep) error {
	if step.Entity != "" {
		return nil
	}
	rec, err := o.store.Load(ctx, path)
	if err != nil {
		return err
	}
	got := domain.GlobalStatus(rec.Snapshot())
	if got != step.Status {
		return &domain.StuckError{
			Target: step.Status,
			Chain:  domain.Chain{step},
		}
	}
	return nil
}

func pendingSteps(seg *domain.Segment) []domain.ChainStep {
	var out []domain.ChainStep
	for _, step := range seg.Steps {
		if !step.Complete {
			out = append(out, step)
		}
	}
	return out
}

// correctionMessage lists every mismatch with its required and actual value
// so the user sees exactly what an automatic correction would write.
func correctionMessage(missing []domain.Mismatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d data field(s) disagree with the declared requirements:", len(missing))
	for _, m := range missing {
		fmt.Fprintf(&b, "\n  %s", m.String())
	}
	b.WriteString("\nApply the required values?")
	return b.String()
}

// correctionDelta materializes the required values as one nested delta.
// Predicate requirements carry no literal value to write and are skipped.
func correctionDelta(missing []domain.Mismatch) (map[string]any, bool) {
	delta := map[string]any{}
	for _, m := range missing {
		if _, isPredicate := m.Expected.(domain.Predicate); isPredicate {
			continue
		}
		setField(delta, m.Field, m.Expected)
	}
	return delta, len(delta) > 0
}

func setField(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if i == len(parts)-1 {
			m[part] = value
			return
		}
		child, ok := m[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[part] = child
		}
		m = child
	}
}

func crossPlatformMessage(platform string, steps []domain.ChainStep) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Status
	}
	return fmt.Sprintf("%d prerequisite step(s) must run on %q: %s. Proceed?",
		len(steps), platform, strings.Join(names, " -> "))
}
