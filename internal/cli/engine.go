package cli

import (
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/internal/logging"
	"github.com/aretw0/stateline/pkg/adapters/process"
	"github.com/aretw0/stateline/pkg/adapters/prompt"
	redislock "github.com/aretw0/stateline/pkg/adapters/redis"
	"github.com/aretw0/stateline/pkg/ports"
)

// CreateLogger configures the application logger for the CLI.
func CreateLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// CreateEngine initializes an engine with standard CLI conventions: loam
// descriptors from the project directory, registry and platform runner
// configuration discovered by convention, and interactive prompting unless
// disabled.
func CreateEngine(opts RunOptions, logger *slog.Logger) (*stateline.Engine, error) {
	opts.applyDefaults()

	if opts.RegistryPath == "" {
		return nil, fmt.Errorf("no registry artifact found in %s (expected registry.json); use --registry", opts.Dir)
	}

	engineOpts := []stateline.Option{
		stateline.WithLogger(logger),
		stateline.WithPlatform(opts.Platform),
		stateline.WithRegistryPath(opts.RegistryPath),
	}
	if opts.CachePath != "" {
		engineOpts = append(engineOpts, stateline.WithDiscoveryCachePath(opts.CachePath))
	}

	if opts.PlatformsPath != "" {
		platforms, err := process.LoadPlatforms(opts.PlatformsPath)
		if err != nil {
			return nil, err
		}
		runner := process.NewRunner(
			process.WithRegistry(platforms),
			process.WithBaseDir(opts.Dir),
			process.WithLogger(logger),
		)
		engineOpts = append(engineOpts, stateline.WithProcessRunner(runner))
	}

	if opts.Yes {
		engineOpts = append(engineOpts, stateline.WithPrompt(prompt.Auto{Decision: ports.Proceed}))
	} else {
		engineOpts = append(engineOpts, stateline.WithPrompt(prompt.NewConsole()))
	}

	if opts.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		engineOpts = append(engineOpts, stateline.WithLocker(redislock.NewLocker(client, "stateline:")))
	}

	eng, err := stateline.New(opts.Dir, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}
