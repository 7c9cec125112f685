package guipath

import (
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
)

// Visitor receives callbacks while a path is resolved.
type Visitor interface {
	// OnIntermediateMatch is called for the element matched by each
	// non-terminal step, before the next step is searched below it.
	OnIntermediateMatch(el ports.Element)
	// OnNotFound is called once per failed resolution with the step that failed.
	OnNotFound(step *domain.PathStep)
}

// NopVisitor ignores every callback.
type NopVisitor struct{}

func (NopVisitor) OnIntermediateMatch(ports.Element) {}
func (NopVisitor) OnNotFound(*domain.PathStep)       {}

// FuncVisitor adapts optional functions to the Visitor interface.
type FuncVisitor struct {
	Match    func(el ports.Element)
	NotFound func(step *domain.PathStep)
}

func (f FuncVisitor) OnIntermediateMatch(el ports.Element) {
	if f.Match != nil {
		f.Match(el)
	}
}

func (f FuncVisitor) OnNotFound(step *domain.PathStep) {
	if f.NotFound != nil {
		f.NotFound(step)
	}
}

// ClickVisitor performs the default action of every intermediate match so
// that collapsed containers reveal their children.
type ClickVisitor struct {
	// Errors collects default-action failures; resolution carries on.
	Errors []error
	Failed *domain.PathStep
}

func (c *ClickVisitor) OnIntermediateMatch(el ports.Element) {
	if err := el.DoDefaultAction(); err != nil {
		c.Errors = append(c.Errors, err)
	}
}

func (c *ClickVisitor) OnNotFound(step *domain.PathStep) {
	c.Failed = step
}

// TrackingVisitor records intermediate matches so they can be replayed
// through another visitor once the whole path is known to resolve.
type TrackingVisitor struct {
	Visited []ports.Element
	Failed  *domain.PathStep
}

func (t *TrackingVisitor) OnIntermediateMatch(el ports.Element) {
	t.Visited = append(t.Visited, el)
}

func (t *TrackingVisitor) OnNotFound(step *domain.PathStep) {
	t.Failed = step
}

// Replay forwards the recorded matches to v in the order they were seen.
func (t *TrackingVisitor) Replay(v Visitor) {
	for _, el := range t.Visited {
		v.OnIntermediateMatch(el)
	}
}
