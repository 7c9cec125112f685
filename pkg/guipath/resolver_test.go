package guipath_test

import (
	"testing"

	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/guipath"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects visitor callbacks.
type recorder struct {
	matches  []string
	notFound []*domain.PathStep
}

func (r *recorder) OnIntermediateMatch(el ports.Element) {
	r.matches = append(r.matches, el.Role()+":"+el.Name())
}

func (r *recorder) OnNotFound(step *domain.PathStep) {
	r.notFound = append(r.notFound, step)
}

func mustPath(t *testing.T, text string, mode domain.PathMode) *domain.PathStep {
	t.Helper()
	p, err := domain.ParsePath(text, mode)
	require.NoError(t, err)
	return p
}

func TestResolve_BreadthFirstNth(t *testing.T) {
	first := memory.NewNode("push button", "X")
	second := memory.NewNode("push button", "X")
	root := memory.NewNode("window", "W", first, second, memory.NewNode("push button", "Y"))

	r := guipath.NewResolver()
	got := r.Resolve(root, mustPath(t, "2push button:X", domain.ModeIndexed), nil)
	assert.Same(t, second, got)

	got = r.Resolve(root, mustPath(t, "push button:X", domain.ModeIndexed), nil)
	assert.Same(t, first, got)
}

func TestResolve_BreadthFirstSpansSubtree(t *testing.T) {
	deep := memory.NewNode("push button", "OK")
	shallow := memory.NewNode("push button", "OK")
	root := memory.NewNode("window", "W",
		memory.NewNode("pane", "left", deep),
		shallow,
	)

	r := guipath.NewResolver()
	assert.Same(t, shallow, r.Resolve(root, mustPath(t, "push button:OK", domain.ModeIndexed), nil),
		"siblings are visited before grandchildren")
	assert.Same(t, deep, r.Resolve(root, mustPath(t, "2push button:OK", domain.ModeIndexed), nil))
}

func TestResolve_ProxyChildrenAreNotExpanded(t *testing.T) {
	hidden := memory.NewNode("push button", "OK")
	root := memory.NewNode("window", "W", memory.NewNode("pane", "proxy", hidden).AsProxy())

	rec := &recorder{}
	got := guipath.NewResolver().Resolve(root, mustPath(t, "push button:OK", domain.ModeIndexed), rec)
	assert.Nil(t, got)
	assert.Len(t, rec.notFound, 1)
}

func TestResolve_CollapsedMenuNeedsClickVisitor(t *testing.T) {
	build := func() *memory.Node {
		return memory.NewNode("desktop", "",
			memory.NewNode("window", "Notepad",
				memory.NewNode("menu item", "File",
					memory.NewNode("menu item", "Open..."),
				).Collapse(),
			),
		)
	}
	path := "window:Notepad/menu item:File/menu item:Open..."
	r := guipath.NewResolver()

	rec := &recorder{}
	assert.Nil(t, r.Resolve(build(), mustPath(t, path, domain.ModeIndexed), rec))
	require.Len(t, rec.notFound, 1, "not-found is reported exactly once")
	assert.Equal(t, "Open...", rec.notFound[0].Name)

	clicker := &guipath.ClickVisitor{}
	got := r.Resolve(build(), mustPath(t, path, domain.ModeIndexed), clicker)
	require.NotNil(t, got)
	assert.Equal(t, "Open...", got.Name())
	assert.Empty(t, clicker.Errors)
	assert.Nil(t, clicker.Failed)
}

func TestResolve_VisitorSeesOnlyIntermediateMatches(t *testing.T) {
	root := memory.NewNode("desktop", "",
		memory.NewNode("window", "A", memory.NewNode("pane", "B", memory.NewNode("push button", "C"))),
	)
	rec := &recorder{}
	got := guipath.NewResolver().Resolve(root, mustPath(t, "window:A/pane:B/push button:C", domain.ModeIndexed), rec)
	require.NotNil(t, got)
	assert.Equal(t, []string{"window:A", "pane:B"}, rec.matches)
	assert.Empty(t, rec.notFound)
}

func fileList() *memory.Node {
	return memory.NewNode("window", "Explorer",
		memory.NewNode("list", "Files",
			memory.NewNode("list item", "a.txt", memory.NewNode("text", "size")),
			memory.NewNode("list item", "b.txt", memory.NewNode("text", "target")),
			memory.NewNode("list item", "c.txt", memory.NewNode("text", "target")),
		),
	)
}

func TestResolve_IndexDiscovery(t *testing.T) {
	vars := variables.New()
	r := guipath.NewResolver(guipath.WithVariables(vars))

	rec := &recorder{}
	got := r.Resolve(fileList(), mustPath(t, "list:Files/0@row list item:#ANY/text:target", domain.ModeIndexed), rec)
	require.NotNil(t, got)
	assert.Equal(t, "target", got.Name())
	assert.Equal(t, "b.txt", got.Parent().Name())

	row, ok := vars.Get("row")
	require.True(t, ok)
	assert.Equal(t, "2", row, "the 1-based index of the first fully resolving candidate is bound")
	assert.Equal(t, []string{"list:Files", "list item:b.txt"}, rec.matches,
		"failed candidates are not replayed")
}

func TestResolve_IndexDiscoveryFailure(t *testing.T) {
	vars := variables.New()
	r := guipath.NewResolver(guipath.WithVariables(vars))

	rec := &recorder{}
	got := r.Resolve(fileList(), mustPath(t, "list:Files/0@row list item:#ANY/text:nothing", domain.ModeIndexed), rec)
	assert.Nil(t, got)
	require.Len(t, rec.notFound, 1)
	assert.Equal(t, "nothing", rec.notFound[0].Name)

	_, ok := vars.Get("row")
	assert.False(t, ok, "no binding on failure")
}

func TestResolve_IndexDiscoveryContainerFallback(t *testing.T) {
	item := memory.NewNode("list item", "a.txt")
	root := memory.NewNode("window", "Explorer",
		memory.NewNode("list", "Files",
			memory.NewNode("pane", "",
				memory.NewNode(domain.RoleContainer, "Files", item),
			),
		),
	)
	vars := variables.New()
	got := guipath.NewResolver(guipath.WithVariables(vars)).
		Resolve(root, mustPath(t, "list:Files/0@i list item:a.txt", domain.ModeIndexed), nil)

	assert.Same(t, item, got)
	i, _ := vars.Get("i")
	assert.Equal(t, "1", i)
}

func TestResolve_DepthFirstPrefersUniqueContainer(t *testing.T) {
	inPane := memory.NewNode("push button", "OK").WithValue("pane")
	inContainer := memory.NewNode("push button", "OK").WithValue("container")
	root := memory.NewNode("window", "W",
		memory.NewNode("pane", "P", inPane),
		memory.NewNode(domain.RoleContainer, "G", inContainer),
	)

	got := guipath.NewResolver().Resolve(root, mustPath(t, "push button:OK", domain.ModeDepthFirst), nil)
	require.NotNil(t, got)
	assert.Equal(t, "container", got.Value())
}

func TestResolve_DepthFirstBacktracks(t *testing.T) {
	root := memory.NewNode("desktop", "",
		memory.NewNode("pane", "A", memory.NewNode("text", "nope")),
		memory.NewNode("pane", "wrapper",
			memory.NewNode("pane", "A", memory.NewNode("push button", "B")),
		),
	)
	rec := &recorder{}
	got := guipath.NewResolver().Resolve(root, mustPath(t, "pane:A/push button:B", domain.ModeDepthFirst), rec)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Name())
	assert.Equal(t, []string{"pane:A", "pane:A"}, rec.matches, "the failed branch was visited before backtracking")
	assert.Equal(t, "wrapper", got.Parent().Parent().Name())
}

func TestResolve_DepthFirstCollapsedMenuNeedsClickVisitor(t *testing.T) {
	build := func() *memory.Node {
		return memory.NewNode("desktop", "",
			memory.NewNode("window", "Notepad",
				memory.NewNode("menu item", "File",
					memory.NewNode("menu item", "Open..."),
				).Collapse(),
			),
		)
	}
	path := "window:Notepad/menu item:File/menu item:Open..."
	r := guipath.NewResolver()

	rec := &recorder{}
	assert.Nil(t, r.Resolve(build(), mustPath(t, path, domain.ModeDepthFirst), rec))
	require.Len(t, rec.notFound, 1)
	assert.Equal(t, "Open...", rec.notFound[0].Name)

	clicker := &guipath.ClickVisitor{}
	got := r.Resolve(build(), mustPath(t, path, domain.ModeDepthFirst), clicker)
	require.NotNil(t, got)
	assert.Equal(t, "Open...", got.Name())
	assert.Empty(t, clicker.Errors)
	assert.Nil(t, clicker.Failed)
}

func TestResolve_DepthFirstVisitsIntermediateMatchesInOrder(t *testing.T) {
	root := memory.NewNode("desktop", "",
		memory.NewNode("window", "A", memory.NewNode("pane", "B", memory.NewNode("push button", "C"))),
	)
	rec := &recorder{}
	got := guipath.NewResolver().Resolve(root, mustPath(t, "window:A/pane:B/push button:C", domain.ModeDepthFirst), rec)
	require.NotNil(t, got)
	assert.Equal(t, []string{"window:A", "pane:B"}, rec.matches)
	assert.Empty(t, rec.notFound)
}

func TestResolve_DepthFirstReportsFailedStep(t *testing.T) {
	root := memory.NewNode("desktop", "",
		memory.NewNode("window", "Notepad", memory.NewNode("menu item", "File")),
	)
	rec := &recorder{}
	got := guipath.NewResolver().Resolve(root,
		mustPath(t, "window:Notepad/menu item:File/menu item:Missing", domain.ModeDepthFirst), rec)
	assert.Nil(t, got)
	require.Len(t, rec.notFound, 1)
	assert.Equal(t, "Missing", rec.notFound[0].Name)

	rec = &recorder{}
	assert.Nil(t, guipath.NewResolver().Resolve(root, mustPath(t, "window:Other/menu item:File", domain.ModeDepthFirst), rec))
	require.Len(t, rec.notFound, 1)
	assert.Equal(t, "Other", rec.notFound[0].Name)
}

func TestResolve_DepthFirstHonoursMaxDepth(t *testing.T) {
	leaf := memory.NewNode("push button", "deep")
	node := leaf
	for i := 0; i < 10; i++ {
		node = memory.NewNode("pane", "", node)
	}
	root := memory.NewNode("window", "W", node)

	path := mustPath(t, "push button:deep", domain.ModeDepthFirst)
	assert.Nil(t, guipath.NewResolver(guipath.WithMaxDepth(4)).Resolve(root, path, nil))
	assert.Same(t, leaf, guipath.NewResolver().Resolve(root, path, nil))
}

func TestResolve_NilInputs(t *testing.T) {
	rec := &recorder{}
	assert.Nil(t, guipath.NewResolver().Resolve(nil, mustPath(t, "a", domain.ModeIndexed), rec))
	assert.Len(t, rec.notFound, 1)
}

func TestLocate_ExpandsVariables(t *testing.T) {
	vars := variables.New()
	vars.Set("app", "Notepad")
	root := memory.NewNode("desktop", "", memory.NewNode("window", "Notepad", memory.NewNode("menu bar", "")))

	r := guipath.NewResolver(guipath.WithVariables(vars))
	got, err := r.Locate(root, "window:$app;/menu bar:", domain.ModeIndexed, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "menu bar", got.Role())

	_, err = r.Locate(root, "", domain.ModeIndexed, nil)
	assert.Error(t, err)
}
