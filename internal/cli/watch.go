package cli

import (
	"context"
	"errors"
	"io"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/internal/presentation/tui"
)

// RunWatch runs the goal once and again every time the rule-set documents
// change, until ctx is cancelled. Failed runs do not stop the watcher.
func RunWatch(ctx context.Context, engine *sensact.Engine, opts RunOptions, out io.Writer) error {
	tui.PrintBanner(out)

	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}
	printSystemMessage(out, "Watching '%s' for changes.", opts.Dir)

	for {
		if _, err := RunOnce(ctx, engine, opts, out); err != nil {
			if isInterrupted(err) || ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, ErrGoalNotAchieved) {
				printSystemMessage(out, "Run error: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}

		if err := engine.Reload(); err != nil {
			printSystemMessage(out, "Reload failed, keeping previous rule sets: %v", err)
			continue
		}
		printSystemMessage(out, "Rule sets reloaded.")
	}
}
