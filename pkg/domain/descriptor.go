package domain

import "sort"

// Predicate is a programmatic requirement check. Descriptors authored in
// files carry literal values only; embedded descriptors may use predicates
// for checks that a literal comparison cannot express.
type Predicate func(actual any) bool

// Descriptor is the static implication metadata for one reachable status.
// It is immutable once loaded for a resolution pass.
type Descriptor struct {
	// Status is the name this descriptor is registered under.
	Status string `json:"status" yaml:"status"`

	// Platform identifies the execution platform this status is reached on
	// (e.g. "web", "club"). Aliases are collapsed by CanonicalPlatform.
	Platform string `json:"platform" yaml:"platform"`

	// Entity scopes this status to a logical sub-object (e.g. "booking").
	// Empty for global statuses.
	Entity string `json:"entity,omitempty" yaml:"entity,omitempty"`

	// Requires maps data fields to the value they must hold before this
	// status is reachable. A string value naming another registered status
	// is a cross-reference requirement; a Predicate value is evaluated
	// against the actual field.
	Requires map[string]any `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Setup lists the ways this status can be reached. Selection between
	// multiple entries is driven by the transition selector.
	Setup []SetupEntry `json:"setup,omitempty" yaml:"setup,omitempty"`

	// On maps event names to outgoing transitions.
	On map[string]Transition `json:"on,omitempty" yaml:"on,omitempty"`
}

// SetupEntry is one way to reach a status: a test file whose action function
// performs the transition, optionally gated on a prior status and data.
type SetupEntry struct {
	TestFile       string         `json:"testFile" yaml:"testFile"`
	Action         string         `json:"action" yaml:"action"`
	PreviousStatus string         `json:"previousStatus,omitempty" yaml:"previousStatus,omitempty"`
	Requires       map[string]any `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Transition is a declared edge from one status to another, triggered by the
// event it is keyed under in Descriptor.On.
type Transition struct {
	Target string `json:"target" yaml:"target"`

	// Requires gates this transition on test data. A transition with no
	// Requires is unconditional.
	Requires map[string]any `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Platforms restricts the transition to the listed execution platforms.
	Platforms []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`

	// Default marks this transition as the declared fallback when several
	// transitions share a target.
	Default bool `json:"default,omitempty" yaml:"default,omitempty"`
}

// TransitionsTo returns the events of all transitions targeting the given
// status, in stable (sorted) order.
func (d *Descriptor) TransitionsTo(target string) []string {
	var events []string
	for ev, tr := range d.On {
		if tr.Target == target {
			events = append(events, ev)
		}
	}
	sort.Strings(events)
	return events
}
