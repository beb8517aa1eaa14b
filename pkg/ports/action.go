package ports

import (
	"context"

	"github.com/aretw0/stateline/pkg/domain"
)

// ActionCall describes one in-session setup action invocation.
type ActionCall struct {
	// Step is the chain step being executed.
	Step domain.ChainStep

	// DataPath is the test data file the action reads and mutates.
	DataPath string

	// IsPrerequisite is true when the action runs as part of resolving a
	// larger target rather than as the invoking test itself.
	IsPrerequisite bool
}

// ActionResult is what an action hands back on success. The orchestrator
// calls Save (if present) after the action explicitly signals success;
// nothing is persisted on failure.
type ActionResult struct {
	// Delta holds the data mutations the action produced.
	Delta map[string]any

	// Save commits the action's state. Optional.
	Save func(ctx context.Context) error
}

// ActionInvoker executes a setup action in the live automation session,
// preserving authentication state between steps.
type ActionInvoker interface {
	Invoke(ctx context.Context, call ActionCall) (*ActionResult, error)
}
