package ports

import "context"

// ExitResult is the outcome of a subprocess test-runner invocation.
type ExitResult struct {
	Code   int
	Output string
}

// Success reports whether the subprocess exited cleanly.
func (r ExitResult) Success() bool { return r.Code == 0 }

// ProcessRunner spawns the test runner of another execution platform for a
// single test file and blocks until it exits.
type ProcessRunner interface {
	Run(ctx context.Context, platform, testFile string) (ExitResult, error)
}
