package memory

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tree is a simulated application: a root node plus an id index used by
// click effects.
type Tree struct {
	Root  *Node
	index map[string]*Node
}

// NewTree indexes root and every descendant carrying an id.
func NewTree(root *Node) *Tree {
	t := &Tree{Root: root, index: make(map[string]*Node)}
	t.attach(root)
	return t
}

func (t *Tree) attach(n *Node) {
	n.tree = t
	if n.id != "" {
		t.index[n.id] = n
	}
	for _, c := range n.children {
		t.attach(c)
	}
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// nodeSpec is the GUI-model document form of a node.
type nodeSpec struct {
	ID        string      `yaml:"id"`
	Role      string      `yaml:"role"`
	Name      string      `yaml:"name"`
	Value     string      `yaml:"value"`
	Handle    string      `yaml:"handle"`
	States    []string    `yaml:"states"`
	Proxy     bool        `yaml:"proxy"`
	Hidden    bool        `yaml:"hidden"`
	Disabled  bool        `yaml:"disabled"`
	Collapsed bool        `yaml:"collapsed"`
	OnClick   Effect      `yaml:"on_click"`
	Children  []*nodeSpec `yaml:"children"`
}

// LoadTree builds a simulated application from a YAML GUI-model document:
//
//	role: window
//	name: Notepad
//	children:
//	  - { role: menu item, name: File, collapsed: true, children: [...] }
//	  - { id: dlg, role: dialog, name: Open, hidden: true }
//	  - { role: push button, name: Open, on_click: { show: [dlg] } }
func LoadTree(data []byte) (*Tree, error) {
	var spec nodeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse gui model: %w", err)
	}
	if spec.Role == "" && spec.Name == "" && len(spec.Children) == 0 {
		return nil, fmt.Errorf("gui model is empty")
	}
	return NewTree(build(&spec)), nil
}

func build(s *nodeSpec) *Node {
	n := NewNode(s.Role, s.Name).
		WithID(s.ID).
		WithValue(s.Value).
		WithHandle(s.Handle).
		WithState(s.States...).
		WithEffect(s.OnClick)
	if s.Proxy {
		n.AsProxy()
	}
	if s.Hidden {
		n.Hide()
	}
	if s.Disabled {
		n.Disable()
	}
	if s.Collapsed {
		n.Collapse()
	}
	for _, c := range s.Children {
		if c != nil {
			n.Append(build(c))
		}
	}
	return n
}
