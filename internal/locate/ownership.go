package locate

import (
	"sort"
	"strings"

	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// OwnershipNode is an instance placed in the containment tree.
type OwnershipNode struct {
	Instance model.SymbolID
	// Scope is the instance's carrier key.
	Scope    string
	Parent   *OwnershipNode
	Children []*OwnershipNode
	// MemberOf names the parent's member whose location contains this
	// instance, or "" when it sits outside every member.
	MemberOf string
}

// OwnershipTree organizes path-scoped instances by containment.
type OwnershipTree struct {
	Roots   []*OwnershipNode
	byScope map[string]*OwnershipNode
	nodes   []*OwnershipNode
}

// BuildOwnershipTree relates every path-carried instance in tree to the
// narrowest other instance whose scope properly contains its own.
func BuildOwnershipTree(tree *model.Tree) *OwnershipTree {
	t := &OwnershipTree{byScope: make(map[string]*OwnershipNode)}
	for _, id := range tree.All() {
		sym := tree.Symbol(id)
		if sym.Kind != model.Instance || sym.Carrier == nil || sym.Carrier.Kind != model.PathCarrier {
			continue
		}
		if _, dup := t.byScope[sym.Carrier.Path]; dup {
			continue
		}
		n := &OwnershipNode{Instance: id, Scope: sym.Carrier.Path}
		t.byScope[n.Scope] = n
		t.nodes = append(t.nodes, n)
	}

	// Broadest scopes first so parents are linked before their children.
	sorted := append([]*OwnershipNode(nil), t.nodes...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Scope) < len(sorted[j].Scope) })

	for _, n := range sorted {
		var best *OwnershipNode
		for _, cand := range sorted {
			if cand == n || !paths.IsProperPrefix(cand.Scope, n.Scope) {
				continue
			}
			if best == nil || len(cand.Scope) > len(best.Scope) {
				best = cand
			}
		}
		if best == nil {
			continue
		}
		n.Parent = best
		best.Children = append(best.Children, n)
		n.MemberOf = containingMember(tree, best.Instance, n.Scope)
	}

	for _, n := range t.nodes {
		if n.Parent == nil {
			t.Roots = append(t.Roots, n)
		}
	}
	return t
}

func containingMember(tree *model.Tree, instance model.SymbolID, scope string) string {
	for _, m := range tree.Members(instance) {
		sym := tree.Symbol(m)
		if sym.Carrier == nil || sym.Carrier.Kind != model.PathCarrier {
			continue
		}
		p := sym.Carrier.Path
		if scope == p || strings.HasPrefix(scope, p+"/") {
			return sym.Name
		}
	}
	return ""
}

// Owner returns the narrowest instance whose scope contains file.
func (t *OwnershipTree) Owner(file string) (*OwnershipNode, bool) {
	if t == nil {
		return nil, false
	}
	var best *OwnershipNode
	for _, n := range t.nodes {
		if file != n.Scope && !strings.HasPrefix(file, n.Scope+"/") {
			continue
		}
		if best == nil || len(n.Scope) > len(best.Scope) {
			best = n
		}
	}
	return best, best != nil
}

// Len returns the number of instances in the tree.
func (t *OwnershipTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}
