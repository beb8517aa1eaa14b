// Package process spawns the test runners of other execution platforms as
// local subprocesses. It follows a strict registry pattern: only platforms
// declared in the loaded configuration can be executed.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/stateline/pkg/domain"
	"github.com/aretw0/stateline/pkg/ports"
)

// Runner implements ports.ProcessRunner against a registry of platform
// configurations.
type Runner struct {
	registry map[string]PlatformConfig
	baseDir  string
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the platform registry from a loaded config.
func WithRegistry(platforms map[string]PlatformConfig) RunnerOption {
	return func(r *Runner) {
		for name, p := range platforms {
			r.registry[domain.CanonicalPlatform(name)] = p
		}
	}
}

// WithBaseDir sets the working directory for spawned runners and the root
// for test-file discovery.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) { r.baseDir = dir }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a subprocess test runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]PlatformConfig),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a platform to the registry.
func (r *Runner) Register(name string, cfg PlatformConfig) {
	r.registry[domain.CanonicalPlatform(name)] = cfg
}

// Run spawns the registered runner of the given platform for one test file
// and blocks until it exits. The exit code is reported in the result, not as
// an error; errors mean the process could not be spawned at all.
func (r *Runner) Run(ctx context.Context, platform, testFile string) (ports.ExitResult, error) {
	canon := domain.CanonicalPlatform(platform)
	cfg, ok := r.registry[canon]
	if !ok {
		return ports.ExitResult{}, fmt.Errorf("platform not registered: %s", platform)
	}

	target := testFile
	if cfg.TestGlob != "" {
		resolved, err := r.locate(cfg.TestGlob, testFile)
		if err != nil {
			return ports.ExitResult{}, err
		}
		target = resolved
	}

	args := append(append([]string{}, cfg.Args...), target)
	cmd := exec.CommandContext(ctx, cfg.Command, args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	for k, v := range cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	// Signals the child that it runs as a prerequisite of a larger
	// resolution, so its own cross-platform segments yield partial results.
	env = append(env, "STATELINE_NESTED=1")
	cmd.Env = env

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	r.logger.Info("spawning platform runner",
		"platform", canon, "command", cfg.Command, "test_file", target)

	err := cmd.Run()
	res := ports.ExitResult{Code: 0, Output: output.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return ports.ExitResult{}, fmt.Errorf("failed to spawn %s runner: %w", canon, err)
		}
		res.Code = exitErr.ExitCode()
	}

	r.logger.Info("platform runner finished", "platform", canon, "exit_code", res.Code)
	return res, nil
}

// locate resolves a bare test-file name to a path under the platform's test
// glob. An already-qualified path that matches the glob is used as-is.
func (r *Runner) locate(pattern, testFile string) (string, error) {
	root := r.baseDir
	if root == "" {
		root = "."
	}

	if ok, _ := doublestar.Match(pattern, filepath.ToSlash(testFile)); ok {
		return testFile, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return "", fmt.Errorf("invalid test glob %q: %w", pattern, err)
	}

	var candidates []string
	for _, m := range matches {
		if matchesTestFile(m, testFile) {
			candidates = append(candidates, m)
		}
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("test file %q not found under %q", testFile, pattern)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("test file %q is ambiguous: %v", testFile, candidates)
	}
}

func matchesTestFile(path, testFile string) bool {
	base := filepath.Base(path)
	if base == testFile {
		return true
	}
	// "book" matches "book.spec.ts".
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = base[:len(base)-len(ext)]
	}
	return base == testFile
}
