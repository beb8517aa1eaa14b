package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/stateline/internal/validator"
	"github.com/aretw0/stateline/pkg/registry"
)

// RunValidate cross-checks the registry against the descriptor repository
// and returns an error listing every finding.
func RunValidate(ctx context.Context, opts RunOptions) error {
	logger := CreateLogger(opts.Debug)
	eng, err := CreateEngine(opts, logger)
	if err != nil {
		return err
	}

	opts.applyDefaults()
	reg, err := registry.Load(opts.RegistryPath)
	if err != nil {
		return err
	}

	problems := validator.Validate(ctx, reg, eng.Repository())
	if len(problems) > 0 {
		return fmt.Errorf("found %d problem(s):\n%s", len(problems), validator.Format(problems))
	}
	return nil
}
