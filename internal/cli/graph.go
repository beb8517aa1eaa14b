package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/stateline/internal/presentation/graph"
)

// RunGraph prints the status graph as a Mermaid diagram.
func RunGraph(ctx context.Context, opts RunOptions) error {
	logger := CreateLogger(opts.Debug)
	eng, err := CreateEngine(opts, logger)
	if err != nil {
		return err
	}

	descriptors, failures, err := eng.Inspect(ctx)
	if err != nil {
		return err
	}
	for status, loadErr := range failures {
		logger.Warn("descriptor skipped in graph", "status", status, "err", loadErr)
	}

	fmt.Print(graph.GenerateMermaid(descriptors, nil))
	return nil
}
