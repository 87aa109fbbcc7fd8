package model

import (
	"testing"
)

func buildTree(t *testing.T) (*Tree, SymbolID) {
	t.Helper()
	tree := NewTree()
	root := tree.MustAdd(NoSymbol, Symbol{Name: "app", Kind: Context, DeclaredLocation: "src"})
	ordering := tree.MustAdd(root, Symbol{Name: "ordering", Kind: Instance, DeclaredLocation: "src/ordering"})
	tree.MustAdd(ordering, Symbol{Name: "domain", Kind: Member, DeclaredLocation: "src/ordering/domain"})
	tree.MustAdd(ordering, Symbol{Name: "infrastructure", Kind: Member, DeclaredLocation: "src/ordering/infra"})
	return tree, root
}

func TestTreeFindByPath(t *testing.T) {
	t.Parallel()
	tree, root := buildTree(t)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"ordering", "ordering", true},
		{"ordering.domain", "domain", true},
		{"ordering.infrastructure", "infrastructure", true},
		{"ordering.missing", "", false},
		{"billing", "", false},
	}
	for _, tt := range tests {
		id, ok := tree.FindByPath(root, tt.path)
		if ok != tt.ok {
			t.Errorf("FindByPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if ok && tree.Name(id) != tt.want {
			t.Errorf("FindByPath(%q) = %q, want %q", tt.path, tree.Name(id), tt.want)
		}
	}
}

func TestTreeAddDuplicateMember(t *testing.T) {
	t.Parallel()
	tree, root := buildTree(t)
	ordering, _ := tree.Member(root, "ordering")

	if _, err := tree.Add(ordering, Symbol{Name: "domain", Kind: Member}); err == nil {
		t.Fatal("expected error for duplicate member")
	}
	if _, err := tree.Add(SymbolID(99), Symbol{Name: "x"}); err == nil {
		t.Fatal("expected error for unknown parent")
	}
	if _, err := tree.Add(NoSymbol, Symbol{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestTreeDescendantsAndParents(t *testing.T) {
	t.Parallel()
	tree, root := buildTree(t)

	desc := tree.Descendants(root)
	if len(desc) != 3 {
		t.Fatalf("got %d descendants, want 3", len(desc))
	}
	want := []string{"ordering", "domain", "infrastructure"}
	for i, id := range desc {
		if tree.Name(id) != want[i] {
			t.Errorf("descendant %d = %q, want %q", i, tree.Name(id), want[i])
		}
	}

	domain, _ := tree.FindByPath(root, "ordering.domain")
	parent := tree.Symbol(domain).Parent
	if tree.Name(parent) != "ordering" {
		t.Errorf("parent of domain = %q, want ordering", tree.Name(parent))
	}
	if tree.Symbol(root).Parent != NoSymbol {
		t.Error("root should have no parent")
	}
	if tree.Symbol(NoSymbol) != nil {
		t.Error("Symbol(NoSymbol) should be nil")
	}
}

func TestSymbolKey(t *testing.T) {
	t.Parallel()
	s := Symbol{DeclaredLocation: "src/a"}
	if s.Key() != "src/a" {
		t.Errorf("Key() = %q, want src/a", s.Key())
	}
	s.Carrier = NewPathCarrier("src/b", nil)
	if s.Key() != "src/b" {
		t.Errorf("Key() with carrier = %q, want src/b", s.Key())
	}
}

func TestContractReference(t *testing.T) {
	t.Parallel()
	c := Contract{Type: NoDependency, Name: "noDependency(domain -> infrastructure)", Args: []SymbolID{1, 2}, Location: "archcheck.yaml"}
	ref := c.Reference()
	if ref.Name != c.Name || ref.Type != NoDependency || ref.Location != "archcheck.yaml" {
		t.Errorf("Reference() = %+v", ref)
	}
}

func TestContractTypeString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		typ  ContractType
		want string
	}{
		{NoDependency, "noDependency"},
		{MustImplement, "mustImplement"},
		{Exhaustiveness, "exhaustiveness"},
		{ContractType(0), "ContractType(0)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if len(ContractTypes()) != 9 {
		t.Errorf("ContractTypes() has %d entries, want 9", len(ContractTypes()))
	}
	if ContractType(42).Valid() {
		t.Error("ContractType(42) should not be valid")
	}
}
