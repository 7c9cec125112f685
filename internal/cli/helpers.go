package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/sensact/internal/logging"
	"github.com/aretw0/sensact/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger configures the application logger. Without debug only
// warnings reach stderr.
func CreateLogger(debug bool, format string) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, logging.Format(strings.ToLower(format)))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalEnter: func(ctx context.Context, e *domain.GoalEvent) {
			logger.Debug("Enter Goal", "ruleset", e.RuleSet, "goal", e.Goal.String(), "depth", e.Depth)
		},
		OnGoalLeave: func(ctx context.Context, e *domain.GoalEvent) {
			logger.Debug("Leave Goal", "ruleset", e.RuleSet, "success", e.Success, "err", e.Err, "duration", e.Duration)
		},
		OnRuleFire: func(ctx context.Context, e *domain.RuleEvent) {
			logger.Debug("Rule Fire", "ruleset", e.RuleSet, "rule", e.RuleID, "tick", e.Tick)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			if e.OK {
				logger.Debug("Action (Success)", "rule", e.RuleID, "action", e.Action.String())
			} else {
				logger.Debug("Action (Failure)", "rule", e.RuleID, "action", e.Action.String())
			}
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError hides interruptions: Ctrl+C exits cleanly.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
