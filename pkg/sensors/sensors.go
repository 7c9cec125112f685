// Package sensors provides the standard conditions and actions evaluated
// against a UI element tree and the run's variable store.
//
// A Kit implements both ports.Sensor and ports.Actor. Its behaviour is driven
// by a registry, so callers can add or override kinds before a run starts.
package sensors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/guipath"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/registry"
	"github.com/aretw0/sensact/pkg/variables"
)

// Attribute values of the "mode" attribute of path-based records.
const (
	ModeIndexed    = "indexed"
	ModeDepthFirst = "depth-first"
)

var errMissingAttr = errors.New("missing attribute")

// Kit evaluates the standard condition and action kinds.
type Kit struct {
	root     ports.Element
	vars     *variables.Store
	resolver *guipath.Resolver
	registry *registry.Registry
	logger   *slog.Logger
	maxDepth int
}

// Option configures a Kit.
type Option func(*Kit)

// WithLogger sets the logger used for warnings and the log action.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kit) {
		k.logger = logger
	}
}

// WithRegistry makes the kit register its kinds into r instead of a private
// registry. Kinds already present in r are overwritten.
func WithRegistry(r *registry.Registry) Option {
	return func(k *Kit) {
		k.registry = r
	}
}

// WithMaxDepth bounds the depth of path resolution.
func WithMaxDepth(depth int) Option {
	return func(k *Kit) {
		k.maxDepth = depth
	}
}

// New creates a kit resolving paths below root and reading and writing vars.
func New(root ports.Element, vars *variables.Store, opts ...Option) *Kit {
	k := &Kit{
		root:   root,
		vars:   vars,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.vars == nil {
		k.vars = variables.New()
	}
	if k.registry == nil {
		k.registry = registry.NewRegistry()
	}
	k.resolver = guipath.NewResolver(
		guipath.WithVariables(k.vars),
		guipath.WithLogger(k.logger),
		guipath.WithMaxDepth(k.maxDepth),
	)
	k.registerConditions()
	k.registerActions()
	return k
}

// Registry exposes the kind registry for extension.
func (k *Kit) Registry() *registry.Registry { return k.registry }

// Variables returns the store the kit reads and writes.
func (k *Kit) Variables() *variables.Store { return k.vars }

// SetRoot replaces the element paths are resolved from, e.g. after the
// application under test was restarted.
func (k *Kit) SetRoot(root ports.Element) { k.root = root }

// Sense implements ports.Sensor. Errors are logged and read as false.
func (k *Kit) Sense(ctx context.Context, cond *domain.Record) bool {
	ok, err := k.registry.Sense(ctx, cond)
	if err != nil {
		k.logger.WarnContext(ctx, "condition error", "condition", cond.String(), "err", err)
		return false
	}
	return ok
}

// Act implements ports.Actor. Errors are logged and read as failure.
func (k *Kit) Act(ctx context.Context, action *domain.Record) bool {
	if err := k.registry.Act(ctx, action); err != nil {
		k.logger.WarnContext(ctx, "action error", "action", action.String(), "err", err)
		return false
	}
	return true
}

// require returns the expanded value of a mandatory attribute.
func (k *Kit) require(rec *domain.Record, name string) (string, error) {
	raw, ok := rec.Get(name)
	if !ok {
		return "", fmt.Errorf("%w %q in %s", errMissingAttr, name, rec.Kind)
	}
	return k.vars.Expand(raw), nil
}

// optional returns the expanded value of an attribute and whether it was set.
func (k *Kit) optional(rec *domain.Record, name string) (string, bool) {
	raw, ok := rec.Get(name)
	if !ok {
		return "", false
	}
	return k.vars.Expand(raw), true
}

// locate resolves the "path" attribute of rec, or the shorthand "value"
// attribute of "kind: path" entries. A nil element with a nil error means the
// path was not found.
func (k *Kit) locate(rec *domain.Record, mode domain.PathMode, v guipath.Visitor) (ports.Element, error) {
	path, ok := rec.Get("path")
	if !ok {
		path, ok = rec.Get("value")
	}
	if !ok {
		return nil, fmt.Errorf("%w %q in %s", errMissingAttr, "path", rec.Kind)
	}
	if k.root == nil {
		return nil, nil
	}
	if m, ok := rec.Get("mode"); ok {
		switch m {
		case ModeDepthFirst:
			mode = domain.ModeDepthFirst
		case ModeIndexed:
			mode = domain.ModeIndexed
		default:
			return nil, fmt.Errorf("unknown path mode %q", m)
		}
	}
	return k.resolver.Locate(k.root, path, mode, v)
}

// splitVar splits "name.field" references.
func splitVar(ref string) (name, field string) {
	name, field, _ = strings.Cut(ref, ".")
	return name, field
}
