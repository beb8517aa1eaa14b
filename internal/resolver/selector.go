package resolver

import (
	"log/slog"
	"sort"

	"github.com/aretw0/stateline/pkg/domain"
)

// Selector disambiguates between multiple declared transitions that could
// satisfy the same target status.
type Selector struct {
	logger *slog.Logger
}

// NewSelector creates a selector. A nil logger falls back to a no-op.
func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(discardHandler())
	}
	return &Selector{logger: logger}
}

// Select picks the transition from source to target. Priority order:
//
//  1. the caller-supplied explicit event name matches exactly
//  2. a transition whose requires are satisfied by current test data
//  3. a transition with no requires at all
//  4. a transition explicitly flagged as the default
//  5. a transition whose platform list includes the current platform
//  6. the first candidate, logged as uncertain
//
// Each level is only consulted when the previous yields no unique answer.
// Returns the selected event name and transition, or ok=false when no
// transition targets the status at all.
func (s *Selector) Select(source *domain.Descriptor, target, explicitEvent string, data map[string]any, platform string) (string, *domain.Transition, bool) {
	events := source.TransitionsTo(target)
	if len(events) == 0 {
		return "", nil, false
	}
	if len(events) == 1 {
		tr := source.On[events[0]]
		return events[0], &tr, true
	}
	sort.Strings(events)

	// 1. Explicit intent
	if explicitEvent != "" {
		for _, ev := range events {
			if ev == explicitEvent {
				tr := source.On[ev]
				return ev, &tr, true
			}
		}
	}

	// 2. Data-driven correctness
	for _, ev := range events {
		tr := source.On[ev]
		if len(tr.Requires) > 0 && domain.Satisfied(tr.Requires, data) {
			return ev, &tr, true
		}
	}

	// 3. Unconditional fallback
	for _, ev := range events {
		tr := source.On[ev]
		if len(tr.Requires) == 0 && !tr.Default {
			return ev, &tr, true
		}
	}

	// 4. Declared default
	for _, ev := range events {
		tr := source.On[ev]
		if tr.Default {
			return ev, &tr, true
		}
	}

	// 5. Platform affinity
	canon := domain.CanonicalPlatform(platform)
	for _, ev := range events {
		tr := source.On[ev]
		for _, p := range tr.Platforms {
			if domain.CanonicalPlatform(p) == canon {
				return ev, &tr, true
			}
		}
	}

	// 6. Last resort
	s.logger.Warn("ambiguous transition selection, falling back to first candidate",
		"source", source.Status, "target", target, "event", events[0])
	tr := source.On[events[0]]
	return events[0], &tr, true
}
