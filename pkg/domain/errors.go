package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStatusNotRegistered is returned when a status name has no registry entry.
var ErrStatusNotRegistered = errors.New("status not registered")

// ErrDataNotFound is returned when neither the delta sibling nor the master
// data file exists.
var ErrDataNotFound = errors.New("test data not found")

// ErrCanceled is returned when the user cancels a confirmation prompt.
var ErrCanceled = errors.New("resolution canceled")

// Mismatch describes a required field that disagrees with the actual data.
type Mismatch struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Present  bool   `json:"present"`
}

func (m Mismatch) String() string {
	if !m.Present {
		return fmt.Sprintf("%s: required %v, field missing", m.Field, m.Expected)
	}
	return fmt.Sprintf("%s: required %v, actual %v", m.Field, m.Expected, m.Actual)
}

// StuckError is the fatal condition where re-resolution after executing a
// step shows no progress. It carries the full chain for diagnostics.
type StuckError struct {
	Target string
	Chain  Chain
}

func (e *StuckError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stuck resolving %q: no progress after execution; chain:", e.Target)
	for i, s := range e.Chain {
		mark := " "
		if s.Complete {
			mark = "x"
		}
		fmt.Fprintf(&b, "\n  %2d [%s] %s", i, mark, s.Status)
		if s.Entity != "" {
			fmt.Fprintf(&b, " (entity %s)", s.Entity)
		}
		if s.LoadError != "" {
			fmt.Fprintf(&b, " !%s", s.LoadError)
		}
	}
	return b.String()
}

// ExecutionError wraps a failure from an invoked action or subprocess.
// Resolution aborts immediately and nothing is persisted.
type ExecutionError struct {
	Step ChainStep
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %q (%s): %v", e.Step.Status, e.Step.TestFile, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// CrossPlatformBlockedError signals that a prerequisite on a different
// platform cannot be auto-resolved from a nested invocation; the top-level
// caller decides interactively or surfaces it.
type CrossPlatformBlockedError struct {
	Platform string
	Steps    []ChainStep
}

func (e *CrossPlatformBlockedError) Error() string {
	names := make([]string, len(e.Steps))
	for i, s := range e.Steps {
		names[i] = s.Status
	}
	return fmt.Sprintf("cross-platform prerequisite blocked: %d step(s) on %q (%s)",
		len(e.Steps), e.Platform, strings.Join(names, " -> "))
}

// ConfigurationError reports a descriptor or registry lookup failure that
// turned out to be required for readiness.
type ConfigurationError struct {
	Status string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for status %q: %s", e.Status, e.Reason)
}
