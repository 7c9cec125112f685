package memory

import (
	"fmt"
	"slices"

	"github.com/aretw0/sensact/pkg/ports"
)

// Well-known state flags of simulated elements.
const (
	StateCollapsed = "collapsed"
	StateExpanded  = "expanded"
	StateChecked   = "checked"
	StateFocused   = "focused"
)

// Click is one recorded interaction with a simulated element.
type Click struct {
	Default bool
	DX, DY  int
}

// Node is a simulated UI element implementing ports.Element.
//
// A collapsed node hides its children until its default action runs, which
// mirrors menus and tree items of real toolkits. Hidden nodes are invisible
// to the tree until a click reveals them.
type Node struct {
	id     string
	name   string
	role   string
	value  string
	handle string
	states []string

	proxy    bool
	hidden   bool
	disabled bool

	children []*Node
	parent   *Node
	tree     *Tree

	effect Effect
	clicks []Click
}

// Effect describes what clicking a simulated node does to the tree.
type Effect struct {
	Show   []string `yaml:"show,omitempty"`
	Hide   []string `yaml:"hide,omitempty"`
	Value  string   `yaml:"value,omitempty"`
	Toggle string   `yaml:"toggle,omitempty"` // state flag flipped on click
}

// NewNode creates a node with the given children.
func NewNode(role, name string, children ...*Node) *Node {
	n := &Node{role: role, name: name}
	n.Append(children...)
	return n
}

// Append adds children to n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// WithID names the node for click effects.
func (n *Node) WithID(id string) *Node { n.id = id; return n }

// WithValue sets the element value.
func (n *Node) WithValue(v string) *Node { n.value = v; return n }

// WithHandle sets the raw handle.
func (n *Node) WithHandle(h string) *Node { n.handle = h; return n }

// WithState adds state flags.
func (n *Node) WithState(states ...string) *Node {
	for _, s := range states {
		n.addState(s)
	}
	return n
}

// WithEffect sets the click effect.
func (n *Node) WithEffect(e Effect) *Node { n.effect = e; return n }

// Collapse hides the children until the next default action.
func (n *Node) Collapse() *Node {
	n.removeState(StateExpanded)
	n.addState(StateCollapsed)
	return n
}

// AsProxy marks the node as a transparent proxy of its parent.
func (n *Node) AsProxy() *Node { n.proxy = true; return n }

// Hide makes the node invisible to its parent.
func (n *Node) Hide() *Node { n.hidden = true; return n }

// Disable makes clicks on the node fail.
func (n *Node) Disable() *Node { n.disabled = true; return n }

// ID returns the node id used by click effects.
func (n *Node) ID() string { return n.id }

func (n *Node) Name() string   { return n.name }
func (n *Node) Role() string   { return n.role }
func (n *Node) Value() string  { return n.value }
func (n *Node) Handle() string { return n.handle }
func (n *Node) IsReal() bool   { return !n.proxy }

// State returns a copy of the state flags.
func (n *Node) State() []string {
	return slices.Clone(n.states)
}

// HasState reports whether flag is set.
func (n *Node) HasState(flag string) bool {
	return slices.Contains(n.states, flag)
}

// Collapsed reports whether the children are hidden.
func (n *Node) Collapsed() bool {
	return n.HasState(StateCollapsed)
}

func (n *Node) ChildCount() int {
	return len(n.visible())
}

func (n *Node) Child(i int) ports.Element {
	kids := n.visible()
	if i < 0 || i >= len(kids) {
		return nil
	}
	return kids[i]
}

func (n *Node) Parent() ports.Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the visible children.
func (n *Node) Children() []*Node {
	return n.visible()
}

func (n *Node) visible() []*Node {
	if n.Collapsed() {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if !c.hidden {
			out = append(out, c)
		}
	}
	return out
}

// DoDefaultAction expands a collapsed node and applies the click effect.
func (n *Node) DoDefaultAction() error {
	if n.disabled {
		return fmt.Errorf("element %s:%s is disabled", n.role, n.name)
	}
	n.clicks = append(n.clicks, Click{Default: true})
	if n.Collapsed() {
		n.removeState(StateCollapsed)
		n.addState(StateExpanded)
	}
	n.apply()
	return nil
}

// ClickAt records an offset click and applies the click effect.
func (n *Node) ClickAt(dx, dy int) error {
	if n.disabled {
		return fmt.Errorf("element %s:%s is disabled", n.role, n.name)
	}
	n.clicks = append(n.clicks, Click{DX: dx, DY: dy})
	n.apply()
	return nil
}

// Clicks returns the recorded interactions.
func (n *Node) Clicks() []Click {
	return slices.Clone(n.clicks)
}

func (n *Node) apply() {
	e := n.effect
	if e.Value != "" {
		n.value = e.Value
	}
	if e.Toggle != "" {
		if n.HasState(e.Toggle) {
			n.removeState(e.Toggle)
		} else {
			n.addState(e.Toggle)
		}
	}
	if n.tree == nil {
		return
	}
	for _, id := range e.Show {
		if target, ok := n.tree.index[id]; ok {
			target.hidden = false
		}
	}
	for _, id := range e.Hide {
		if target, ok := n.tree.index[id]; ok {
			target.hidden = true
		}
	}
}

func (n *Node) addState(flag string) {
	if !n.HasState(flag) {
		n.states = append(n.states, flag)
	}
}

func (n *Node) removeState(flag string) {
	n.states = slices.DeleteFunc(n.states, func(s string) bool { return s == flag })
}

// Find returns the first node below n, n included, with the given id.
func (n *Node) Find(id string) *Node {
	if n.id == id {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}
