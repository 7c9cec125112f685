package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/sensact/internal/compiler"
	"github.com/aretw0/sensact/internal/presentation/graph"
	"github.com/aretw0/sensact/internal/validator"
	"github.com/aretw0/sensact/pkg/sensors"
)

// Validate loads the library and prints compiler diagnostics followed by
// lint issues. It fails when any of them is an error.
func Validate(opts Options, out io.Writer) error {
	opts.Store = StoreNone
	opts.KafkaBrokers = nil

	// 1. Load
	engine, closeAll, err := NewEngine(opts, CreateLogger(opts.Debug, opts.LogFormat))
	if err != nil {
		return err
	}
	defer closeAll()

	errorCount := 0
	for _, d := range engine.Diagnostics() {
		fmt.Fprintln(out, d.Error())
		if d.Severity == compiler.SeverityError {
			errorCount++
		}
	}

	// 2. Lint against the standard condition and action kinds
	kinds := sensors.New(nil, nil).Registry()
	for _, issue := range validator.Lint(engine.Library(), kinds) {
		fmt.Fprintln(out, issue.String())
		if issue.Severity == validator.SeverityError {
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d errors in %d rule sets", errorCount, engine.Library().Len())
	}
	return nil
}

// Graph prints the Mermaid sub-goal graph of the library. With runID the
// rule sets touched by that stored run are highlighted.
func Graph(ctx context.Context, opts Options, runID string, out io.Writer) error {
	opts.KafkaBrokers = nil
	engine, closeAll, err := NewEngine(opts, CreateLogger(opts.Debug, opts.LogFormat))
	if err != nil {
		return err
	}
	defer closeAll()

	var overlay *graph.GraphOverlay
	if runID != "" {
		snap, err := engine.Sessions().Load(ctx, runID)
		if err != nil {
			return fmt.Errorf("error loading run '%s': %w", runID, err)
		}
		overlay = graph.OverlayFromSnapshot(snap)
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(engine.Library(), overlay))
	return err
}
