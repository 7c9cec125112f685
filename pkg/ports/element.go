package ports

// Element is a live node of the UI tree under test.
//
// Elements are inspected on demand and are not guaranteed stable between
// queries: a child obtained earlier may be gone on the next call.
type Element interface {
	Name() string
	Role() string
	Value() string
	// State returns the element state flags (e.g. "focused", "collapsed").
	State() []string

	ChildCount() int
	// Child returns the i-th child, or nil when the index is out of range or
	// the child vanished.
	Child(i int) Element
	Parent() Element

	// IsReal reports whether the element is introspectable on its own.
	// Transparent proxies of their parent return false and are never used as
	// search roots.
	IsReal() bool

	// Handle is the raw window handle or identifier used by glimpse probes.
	Handle() string

	DoDefaultAction() error
	ClickAt(dx, dy int) error
}
