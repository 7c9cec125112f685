package guipath

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// DefaultMaxDepth bounds the nesting explored by a single resolution.
const DefaultMaxDepth = 64

// Variables is the subset of the variable store used by the resolver.
type Variables interface {
	Set(name, value string)
	Expand(text string) string
}

// Resolver finds elements of a UI tree from path step chains.
type Resolver struct {
	vars     Variables
	logger   *slog.Logger
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithVariables sets the store receiving index-discovery bindings and
// expanding path strings in Locate.
func WithVariables(v Variables) Option {
	return func(r *Resolver) {
		r.vars = v
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve walks path below root and returns the element matched by the
// terminal step, or nil. On failure v.OnNotFound is called exactly once with
// the step that could not be matched; no partial result is returned.
func (r *Resolver) Resolve(root ports.Element, path *domain.PathStep, v Visitor) ports.Element {
	if v == nil {
		v = NopVisitor{}
	}
	if root == nil || path == nil {
		v.OnNotFound(path)
		return nil
	}

	el, failed := r.resolveStep(root, path, v, 0)
	if el == nil {
		if failed == nil {
			failed = path
		}
		r.logger.Debug("gui path not found", "path", path.String(), "step", failed.Label())
		v.OnNotFound(failed)
		return nil
	}
	return el
}

// resolveStep never calls OnNotFound; the failed step is returned instead so
// that only the top-level call reports it.
func (r *Resolver) resolveStep(node ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	if depth > r.maxDepth {
		return nil, step
	}
	switch {
	case step.Occurrence > 0:
		return r.breadthFirst(node, step, v, depth)
	case step.Occurrence == 0:
		return r.discover(node, step, v, depth)
	default:
		return r.depthFirst(node, step, v, depth)
	}
}

// descend finishes a step matched at el: the terminal step returns el, any
// other step notifies v and continues below el.
func (r *Resolver) descend(el ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	if step.IsTerminal() {
		return el, nil
	}
	v.OnIntermediateMatch(el)
	return r.resolveStep(el, step.Next, v, depth+1)
}

// breadthFirst returns the step.Occurrence-th match of the subtree below node.
func (r *Resolver) breadthFirst(node ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	queue := [][]ports.Element{children(node)}
	count := 0

	for len(queue) > 0 {
		siblings := queue[0]
		if len(siblings) == 0 {
			queue = queue[1:]
			continue
		}
		el := siblings[0]
		queue[0] = siblings[1:]

		if Matches(step, el) {
			count++
			if count == step.Occurrence {
				return r.descend(el, step, v, depth)
			}
		}
		if el.IsReal() && el.ChildCount() > 0 {
			queue = append(queue, children(el))
		}
	}
	return nil, step
}

// discover tries each matching direct child in turn and keeps the first
// whose remainder resolves, binding its 1-based index to step.VarID.
func (r *Resolver) discover(node ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	count := 0
	return r.discoverIn(node, step, v, depth, &count)
}

func (r *Resolver) discoverIn(node ports.Element, step *domain.PathStep, v Visitor, depth int, count *int) (ports.Element, *domain.PathStep) {
	failed := step
	for _, child := range children(node) {
		if !Matches(step, child) {
			// Some toolkits wrap the items of a list in a container named after
			// the list itself.
			if container := namedContainer(child, step); container != nil && depth < r.maxDepth {
				if el, f := r.discoverIn(container, step, v, depth+1, count); el != nil {
					return el, nil
				} else if f != step {
					failed = f
				}
			}
			continue
		}

		*count++
		tracker := &TrackingVisitor{}
		el, f := r.descend(child, step, tracker, depth)
		if el == nil {
			failed = f
			continue
		}

		if step.VarID != "" && r.vars != nil {
			r.vars.Set(step.VarID, strconv.Itoa(*count))
		}
		tracker.Replay(v)
		return el, nil
	}
	return nil, failed
}

// depthFirst searches the whole subtree below node. Intermediate matches
// reach v as they are found, so a failed branch may already have been visited.
func (r *Resolver) depthFirst(node ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	el, failed := r.dfs(node, step, v, depth)
	if el == nil {
		return nil, deepest(failed, step)
	}
	return el, nil
}

// dfs returns the match of step below node, or the deepest step any branch
// failed at.
func (r *Resolver) dfs(node ports.Element, step *domain.PathStep, v Visitor, depth int) (ports.Element, *domain.PathStep) {
	if depth > r.maxDepth {
		return nil, step
	}

	kids := children(node)
	failed := step

	// 1. A unique container is searched first as if it were node itself.
	preferred := uniqueContainer(kids)
	if preferred != nil {
		el, f := r.dfs(preferred, step, v, depth+1)
		if el != nil {
			return el, nil
		}
		failed = deepest(failed, f)
	}

	// 2. Then every child, matching it and searching below it.
	for _, child := range kids {
		if child == preferred {
			continue
		}
		if Matches(step, child) {
			el, f := r.descend(child, step, v, depth)
			if el != nil {
				return el, nil
			}
			failed = deepest(failed, f)
		}
		if child.IsReal() {
			el, f := r.dfs(child, step, v, depth+1)
			if el != nil {
				return el, nil
			}
			failed = deepest(failed, f)
		}
	}
	return nil, failed
}

// deepest returns whichever of a and b lies further along the path.
func deepest(a, b *domain.PathStep) *domain.PathStep {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	if position(b) > position(a) {
		return b
	}
	return a
}

func position(s *domain.PathStep) int {
	n := 0
	for cur := s.Prev; cur != nil; cur = cur.Prev {
		n++
	}
	return n
}

func children(node ports.Element) []ports.Element {
	n := node.ChildCount()
	out := make([]ports.Element, 0, n)
	for i := 0; i < n; i++ {
		if c := node.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func uniqueContainer(kids []ports.Element) ports.Element {
	var found ports.Element
	for _, c := range kids {
		if c.Role() != domain.RoleContainer || !c.IsReal() {
			continue
		}
		if found != nil {
			return nil
		}
		found = c
	}
	return found
}

// namedContainer returns the container child of el named like the element
// matched by the previous step.
func namedContainer(el ports.Element, step *domain.PathStep) ports.Element {
	if step.Prev == nil || !el.IsReal() {
		return nil
	}
	for _, c := range children(el) {
		if c.Role() == domain.RoleContainer && c.Name() == step.Prev.Name {
			return c
		}
	}
	return nil
}
