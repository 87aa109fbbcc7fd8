// Package model defines core data structures for archcheck.
package model

import (
	"fmt"
	"strings"
)

// SymbolKind indicates what architectural unit a symbol represents.
type SymbolKind string

const (
	Context  SymbolKind = "context"
	Layer    SymbolKind = "layer"
	Module   SymbolKind = "module"
	Instance SymbolKind = "instance"
	Member   SymbolKind = "member"
)

// SymbolID is a stable index of a symbol inside a Tree.
type SymbolID int32

// NoSymbol is the parent of root symbols.
const NoSymbol SymbolID = -1

// CarrierKind describes how a symbol's files were derived.
type CarrierKind uint8

const (
	NoCarrier CarrierKind = iota
	PathCarrier
)

// Carrier records the mechanism that produced a symbol's file set.
// For path carriers Files is the snapshot of files matched under Path.
type Carrier struct {
	Kind  CarrierKind
	Path  string
	Files []string
}

// NewPathCarrier returns a path carrier for path with the given file snapshot.
func NewPathCarrier(path string, files []string) *Carrier {
	return &Carrier{Kind: PathCarrier, Path: path, Files: files}
}

// Key is the lookup key for the carrier in resolved-file and container maps.
func (c *Carrier) Key() string {
	if c == nil {
		return ""
	}
	return c.Path
}

// Symbol is a node in the architecture tree: a context, layer, module,
// instance, or member.
type Symbol struct {
	ID               SymbolID
	Name             string
	Kind             SymbolKind
	DeclaredLocation string
	KindTypeName     string
	LocationDerived  bool
	Carrier          *Carrier
	Files            []string
	Contracts        []ContractReference
	Parent           SymbolID

	members     []SymbolID
	memberIndex map[string]SymbolID
}

// Key returns the location key used to look the symbol up in a
// resolved-files map: the carrier key when present, else the declared location.
func (s *Symbol) Key() string {
	if s.Carrier != nil && s.Carrier.Key() != "" {
		return s.Carrier.Key()
	}
	return s.DeclaredLocation
}

func (s *Symbol) String() string {
	if s.DeclaredLocation == "" {
		return fmt.Sprintf("%s:%s", s.Kind, s.Name)
	}
	return fmt.Sprintf("%s:%s @ %s", s.Kind, s.Name, s.DeclaredLocation)
}

// Tree is an arena of symbols. Parents own their members; everything else
// (contracts, diagnostics) refers to symbols by SymbolID.
type Tree struct {
	symbols []*Symbol
	roots   []SymbolID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Add inserts s as a member of parent (or as a root when parent is NoSymbol)
// and returns its ID. Member names must be unique among siblings.
func (t *Tree) Add(parent SymbolID, s Symbol) (SymbolID, error) {
	if s.Name == "" {
		return NoSymbol, fmt.Errorf("symbol name is empty")
	}
	var p *Symbol
	if parent != NoSymbol {
		p = t.Symbol(parent)
		if p == nil {
			return NoSymbol, fmt.Errorf("unknown parent symbol %d", parent)
		}
		if _, dup := p.memberIndex[s.Name]; dup {
			return NoSymbol, fmt.Errorf("duplicate member %q in %q", s.Name, p.Name)
		}
	}

	id := SymbolID(len(t.symbols))
	sym := s
	sym.ID = id
	sym.Parent = parent
	sym.members = nil
	sym.memberIndex = nil
	t.symbols = append(t.symbols, &sym)

	if p == nil {
		t.roots = append(t.roots, id)
		return id, nil
	}
	if p.memberIndex == nil {
		p.memberIndex = make(map[string]SymbolID)
	}
	p.memberIndex[s.Name] = id
	p.members = append(p.members, id)
	return id, nil
}

// MustAdd is Add for tests and static fixtures; it panics on error.
func (t *Tree) MustAdd(parent SymbolID, s Symbol) SymbolID {
	id, err := t.Add(parent, s)
	if err != nil {
		panic(err)
	}
	return id
}

// Symbol returns the symbol for id, or nil if id is not in the tree.
func (t *Tree) Symbol(id SymbolID) *Symbol {
	if t == nil || id < 0 || int(id) >= len(t.symbols) {
		return nil
	}
	return t.symbols[id]
}

// Name returns the name of id, or "" if unknown.
func (t *Tree) Name(id SymbolID) string {
	if s := t.Symbol(id); s != nil {
		return s.Name
	}
	return ""
}

// Len returns the number of symbols in the tree.
func (t *Tree) Len() int {
	return len(t.symbols)
}

// Roots returns the top-level symbols in insertion order.
func (t *Tree) Roots() []SymbolID {
	return t.roots
}

// Members returns the direct members of id in insertion order.
func (t *Tree) Members(id SymbolID) []SymbolID {
	if s := t.Symbol(id); s != nil {
		return s.members
	}
	return nil
}

// Member finds a direct member of id by name.
func (t *Tree) Member(id SymbolID, name string) (SymbolID, bool) {
	s := t.Symbol(id)
	if s == nil {
		return NoSymbol, false
	}
	m, ok := s.memberIndex[name]
	return m, ok
}

// FindByPath finds a descendant of id by dotted path (e.g. "ordering.domain").
func (t *Tree) FindByPath(id SymbolID, path string) (SymbolID, bool) {
	current := id
	for _, part := range strings.Split(path, ".") {
		next, ok := t.Member(current, part)
		if !ok {
			return NoSymbol, false
		}
		current = next
	}
	return current, true
}

// Descendants returns every symbol below id in depth-first pre-order.
func (t *Tree) Descendants(id SymbolID) []SymbolID {
	var out []SymbolID
	var walk func(SymbolID)
	walk = func(cur SymbolID) {
		for _, m := range t.Members(cur) {
			out = append(out, m)
			walk(m)
		}
	}
	walk(id)
	return out
}

// All returns every symbol ID in insertion order.
func (t *Tree) All() []SymbolID {
	ids := make([]SymbolID, len(t.symbols))
	for i := range t.symbols {
		ids[i] = SymbolID(i)
	}
	return ids
}
