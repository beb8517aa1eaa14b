package ports

import (
	"context"
	"time"
)

// Decision is the outcome of a confirmation prompt.
type Decision int

const (
	// Proceed means the user accepted, or the countdown elapsed.
	Proceed Decision = iota
	// Cancel means the user interrupted the countdown.
	Cancel
)

// Prompt is an injectable human-in-the-loop confirmation capability. The
// timeout resolves to Proceed; an interrupt resolves to Cancel. Terminal
// state must be restored on both paths.
type Prompt interface {
	Confirm(ctx context.Context, message string, timeout time.Duration) (Decision, error)
}
