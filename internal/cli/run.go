package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/internal/presentation/tui"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"golang.org/x/term"
)

// ErrGoalNotAchieved is returned when a run finishes without reaching done.
var ErrGoalNotAchieved = errors.New("goal not achieved")

// Execute handles the 'run' command logic, dispatching to a single run or watch mode.
func Execute(ctx context.Context, opts RunOptions, out io.Writer) error {
	if opts.Watch && (opts.Headless || opts.JSON) {
		return fmt.Errorf("--watch cannot be combined with --headless or --json")
	}

	logger := CreateLogger(opts.Debug, opts.LogFormat)
	engine, closeAll, err := NewEngine(opts.Options, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAll(); err != nil {
			logger.Warn("failed to close backends", "err", err)
		}
	}()

	for _, d := range engine.Diagnostics() {
		logger.Warn("library diagnostic", "diagnostic", d.Error())
	}

	if opts.Watch {
		return RunWatch(ctx, engine, opts, out)
	}
	_, err = RunOnce(ctx, engine, opts, out)
	return handleExecutionError(err)
}

// RunOnce performs a single run and writes its report to out.
func RunOnce(ctx context.Context, engine *sensact.Engine, opts RunOptions, out io.Writer) (*domain.Snapshot, error) {
	// 1. Inputs
	goal, err := ParseGoal(opts.Goal)
	if err != nil {
		return nil, err
	}
	vars, err := ParseVars(opts.Vars)
	if err != nil {
		return nil, err
	}
	root, err := LoadModel(opts.Model)
	if err != nil {
		return nil, err
	}

	runOpts := []sensact.RunOption{sensact.WithInitialVariables(vars)}
	if opts.Target != "" {
		runOpts = append(runOpts, sensact.WithTarget(opts.Target))
	}

	// 2. Run
	snap, runErr := engine.Run(ctx, goal, root, runOpts...)

	// 3. Report
	if snap != nil {
		if err := writeReport(out, snap, opts); err != nil {
			return snap, err
		}
	}
	if runErr != nil {
		return snap, runErr
	}
	if snap.Outcome != domain.OutcomeDone {
		return snap, fmt.Errorf("%w: %s", ErrGoalNotAchieved, snap.Reason)
	}
	return snap, nil
}

// LoadModel reads a GUI model document. An empty path means no model.
func LoadModel(path string) (ports.Element, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model: %w", err)
	}
	tree, err := memory.LoadTree(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing model %s: %w", path, err)
	}
	return tree.Root, nil
}

func writeReport(out io.Writer, snap *domain.Snapshot, opts RunOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	report := tui.RunReport(snap)
	if !opts.Headless && isTerminal(out) {
		rendered, err := tui.NewRenderer()(report)
		if err == nil {
			report = rendered
		}
	}
	_, err := io.WriteString(out, report)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
