package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/internal/presentation/tui"
)

// RunPlan resolves the chain toward the target without executing anything
// and prints the resulting report.
func RunPlan(ctx context.Context, opts RunOptions, target string) error {
	logger := CreateLogger(opts.Debug)
	eng, err := CreateEngine(opts, logger)
	if err != nil {
		return err
	}

	res, err := eng.Plan(ctx, stateline.Request{
		Target:   target,
		DataPath: opts.DataPath,
		Event:    opts.Event,
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}

	markdown := tui.ReportMarkdown(res.Report)
	render := tui.NewRenderer()
	out, err := render(markdown)
	if err != nil {
		// Fall back to raw markdown on rendering failures.
		fmt.Print(markdown)
		return nil
	}
	fmt.Print(out)
	return nil
}
