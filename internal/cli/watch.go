package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stateline/internal/presentation/tui"
)

// RunWatch runs validation in development mode, re-checking the descriptor
// set whenever a file changes. It blocks until the context is canceled.
func RunWatch(ctx context.Context, opts RunOptions) error {
	logger := CreateLogger(opts.Debug)
	tui.PrintBanner()

	eng, err := CreateEngine(opts, logger)
	if err != nil {
		return err
	}

	events, err := eng.Watch(ctx)
	if err != nil {
		return err
	}

	printSystemMessage("Watching '%s' for descriptor changes.", opts.Dir)
	revalidate(ctx, opts)

	for {
		select {
		case <-ctx.Done():
			printSystemMessage("Watcher stopped.")
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			logger.Info("change detected", "descriptor", id)
			printSystemMessage("Change detected in '%s'.", id)
			// Let the file system settle before re-reading.
			time.Sleep(100 * time.Millisecond)
			if err := eng.Reload(ctx); err != nil {
				logger.Warn("reload failed", "err", err)
			}
			revalidate(ctx, opts)
		}
	}
}

func revalidate(ctx context.Context, opts RunOptions) {
	if err := RunValidate(ctx, opts); err != nil {
		fmt.Println(err)
		return
	}
	printSystemMessage("Graph is valid.")
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
