package locate

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/archcheck/internal/model"
)

func TestLocate(t *testing.T) {
	t.Parallel()
	tree := model.NewTree()
	ordering := tree.MustAdd(model.NoSymbol, model.Symbol{Name: "ordering", Kind: model.Instance, DeclaredLocation: "src/ordering/"})
	domain := tree.MustAdd(ordering, model.Symbol{Name: "domain", Kind: model.Member, DeclaredLocation: "src/ordering/domain"})
	empty := tree.MustAdd(ordering, model.Symbol{Name: "events", Kind: model.Member, DeclaredLocation: "src/ordering/events"})
	ghost := tree.MustAdd(ordering, model.Symbol{Name: "ghost", Kind: model.Member, DeclaredLocation: "src/ordering/ghost"})
	floating := tree.MustAdd(ordering, model.Symbol{Name: "floating", Kind: model.Member})

	files := []string{
		"src/ordering/context.ts",
		"src/ordering/domain/order.ts",
		"src/ordering/domainx/other.ts",
		"src/other/x.ts",
	}
	fsys := fstest.MapFS{"src/ordering/events": &fstest.MapFile{Mode: fs.ModeDir}}

	res := Locate(tree, files, fsys)

	assert.Equal(t, []string{"src/ordering/domain/order.ts"}, res.ResolvedFiles["src/ordering/domain"])
	assert.Equal(t, files[:3], res.ResolvedFiles["src/ordering"])

	got, ok := res.ResolvedFiles["src/ordering/events"]
	assert.True(t, ok, "empty directory should be present")
	assert.Empty(t, got)

	_, ok = res.ResolvedFiles["src/ordering/ghost"]
	assert.False(t, ok)

	assert.Equal(t, "src/ordering", tree.Symbol(ordering).Key())
	assert.Equal(t, model.PathCarrier, tree.Symbol(domain).Carrier.Kind)
	assert.Equal(t, []string{"src/ordering/domain/order.ts"}, tree.Symbol(domain).Files)
	assert.Empty(t, tree.Symbol(empty).Files)
	assert.NotNil(t, tree.Symbol(ghost).Carrier)
	assert.Nil(t, tree.Symbol(floating).Carrier)

	assert.Equal(t, files[:3], res.ContainerFiles["src/ordering"])
}

func TestLocateFileLocation(t *testing.T) {
	t.Parallel()
	tree := model.NewTree()
	cli := tree.MustAdd(model.NoSymbol, model.Symbol{Name: "cli", Kind: model.Instance, DeclaredLocation: "src/cli.ts"})

	res := Locate(tree, []string{"src/cli.ts", "src/cli.tsx"}, nil)
	assert.Equal(t, []string{"src/cli.ts"}, res.ResolvedFiles["src/cli.ts"])
	assert.Equal(t, []string{"src/cli.ts"}, tree.Symbol(cli).Files)
}

func TestLocateNestedInstances(t *testing.T) {
	t.Parallel()
	tree := model.NewTree()
	outer := tree.MustAdd(model.NoSymbol, model.Symbol{Name: "app", Kind: model.Instance, DeclaredLocation: "src"})
	tree.MustAdd(outer, model.Symbol{Name: "contexts", Kind: model.Member, DeclaredLocation: "src/contexts"})
	inner := tree.MustAdd(model.NoSymbol, model.Symbol{Name: "ordering", Kind: model.Instance, DeclaredLocation: "src/contexts/ordering"})
	deepest := tree.MustAdd(model.NoSymbol, model.Symbol{Name: "pricing", Kind: model.Instance, DeclaredLocation: "src/contexts/ordering/pricing"})

	files := []string{
		"src/contexts/ordering/order.ts",
		"src/contexts/ordering/pricing/price.ts",
		"src/main.ts",
	}
	res := Locate(tree, files, nil)

	assert.Equal(t, []string{"src/main.ts"}, res.ContainerFiles["src"])
	assert.Equal(t, []string{"src/contexts/ordering/order.ts"}, res.ContainerFiles["src/contexts/ordering"])
	assert.Equal(t, []string{"src/contexts/ordering/pricing/price.ts"}, res.ContainerFiles["src/contexts/ordering/pricing"])

	own := res.Ownership
	require.Equal(t, 3, own.Len())
	require.Len(t, own.Roots, 1)
	assert.Equal(t, outer, own.Roots[0].Instance)

	require.Len(t, own.Roots[0].Children, 1)
	n := own.Roots[0].Children[0]
	assert.Equal(t, "src/contexts/ordering", n.Scope)
	assert.Equal(t, inner, n.Instance)
	assert.Equal(t, outer, n.Parent.Instance)
	assert.Equal(t, "contexts", n.MemberOf)
	require.Len(t, n.Children, 1)
	assert.Equal(t, deepest, n.Children[0].Instance)
	assert.Equal(t, "", n.Children[0].MemberOf)

	owner, ok := own.Owner("src/contexts/ordering/pricing/price.ts")
	require.True(t, ok)
	assert.Equal(t, deepest, owner.Instance)

	_, ok = own.Owner("lib/x.ts")
	assert.False(t, ok)
}

func TestOwnershipSiblingPrefix(t *testing.T) {
	t.Parallel()
	tree := model.NewTree()
	tree.MustAdd(model.NoSymbol, model.Symbol{Name: "a", Kind: model.Instance, DeclaredLocation: "src/order"})
	tree.MustAdd(model.NoSymbol, model.Symbol{Name: "b", Kind: model.Instance, DeclaredLocation: "src/ordering"})

	res := Locate(tree, []string{"src/ordering/x.ts"}, nil)
	assert.Len(t, res.Ownership.Roots, 2)
	owner, ok := res.Ownership.Owner("src/ordering/x.ts")
	require.True(t, ok)
	assert.Equal(t, "src/ordering", owner.Scope)
}

func TestNilOwnershipTree(t *testing.T) {
	t.Parallel()
	var own *OwnershipTree
	_, ok := own.Owner("x")
	assert.False(t, ok)
	assert.Zero(t, own.Len())
}
