package domain

// ChainStep is one resolved prerequisite on the path to a target status.
type ChainStep struct {
	Status   string `json:"status"`
	Action   string `json:"action,omitempty"`
	TestFile string `json:"testFile,omitempty"`
	Platform string `json:"platform,omitempty"`
	Entity   string `json:"entity,omitempty"`

	// Event is the single-hop transition event between the previous status
	// and this one, when exactly one is declared.
	Event string `json:"event,omitempty"`

	Complete bool `json:"complete"`
	IsTarget bool `json:"isTarget,omitempty"`

	// LoadError records a descriptor or registry lookup failure for this
	// step. The step stays in the chain so the full diagnostic path remains
	// printable; resolution only fails if the step is actually required.
	LoadError string `json:"loadError,omitempty"`
}

// Key returns the visited-set key for the status this step represents.
// Entity-scoped steps live in their own namespace so an entity status never
// collides with a global status of the same name.
func (s ChainStep) Key() string {
	if s.Entity != "" {
		return s.Entity + "_" + s.Status
	}
	return s.Status
}

// Chain is the ordered prerequisite path from current to target status.
// Invariant: every step's declared prerequisites occur at a lower index.
type Chain []ChainStep

// Incomplete counts the steps not yet satisfied by persisted data.
func (c Chain) Incomplete() int {
	n := 0
	for _, s := range c {
		if !s.Complete {
			n++
		}
	}
	return n
}

// IncompletePrereqs counts the incomplete steps excluding the target step.
// Performing the target transition is the invoking test's own job, so it
// never counts against readiness or progress.
func (c Chain) IncompletePrereqs() int {
	n := 0
	for _, s := range c {
		if !s.Complete && !s.IsTarget {
			n++
		}
	}
	return n
}

// Ready reports whether every prerequisite step is complete and no step on
// the path carries a load error.
func (c Chain) Ready() bool {
	return c.IncompletePrereqs() == 0 && c.Blocked() == nil
}

// IndexOf returns the index of the first step for the given status, or -1.
func (c Chain) IndexOf(status string) int {
	for i, s := range c {
		if s.Status == status && s.Entity == "" {
			return i
		}
	}
	return -1
}

// Blocked returns the first incomplete step that carries a load error, if
// any. Such a step cannot be executed and makes the resolution fatal.
func (c Chain) Blocked() *ChainStep {
	for i := range c {
		if !c[i].Complete && c[i].LoadError != "" {
			return &c[i]
		}
	}
	return nil
}

// Segment is a maximal contiguous run of same-platform steps.
type Segment struct {
	Platform string      `json:"platform"`
	Steps    []ChainStep `json:"steps"`
	Complete bool        `json:"complete"`
}

// Visit tags a recursive resolution branch. A normal visit aborts on a
// status that was already seen; a loop-reentry visit allows exactly one
// re-entry into its named target, modeling a legitimate A->B->A transition.
type Visit struct {
	Kind   VisitKind
	Target string
}

// VisitKind discriminates the Visit variants.
type VisitKind int

const (
	VisitNormal VisitKind = iota
	VisitLoopReentry
)

// LoopReentry builds the loop-reentry variant for the given target status.
func LoopReentry(target string) Visit {
	return Visit{Kind: VisitLoopReentry, Target: target}
}

// Allows reports whether this visit permits re-entering the given status.
func (v Visit) Allows(status string) bool {
	return v.Kind == VisitLoopReentry && v.Target == status
}
