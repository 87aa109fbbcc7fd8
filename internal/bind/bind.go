// Package bind turns a parsed architecture file into a symbol tree and the
// contracts to check against it.
package bind

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
	"github.com/phobologic/archcheck/internal/plugins"
)

// RootName is the name of the context symbol every instance hangs from.
const RootName = "project"

// Result is the output of Bind. Errors are binding problems found in the
// architecture file; the tree and contracts are usable regardless.
type Result struct {
	Tree      *model.Tree
	Root      model.SymbolID
	Instances []model.SymbolID
	Contracts []model.Contract
	Errors    []string
}

type binder struct {
	cfg        *config.Config
	byName     map[string]plugins.Plugin
	intrinsics []plugins.Intrinsic
	res        *Result
}

// Bind builds the symbol tree for cfg and generates contracts with ps.
func Bind(cfg *config.Config, ps []plugins.Plugin) *Result {
	b := &binder{
		cfg:    cfg,
		byName: make(map[string]plugins.Plugin, len(ps)),
		res:    &Result{Tree: model.NewTree()},
	}
	for _, p := range ps {
		b.byName[p.ConstraintName()] = p
		if in, ok := p.(plugins.Intrinsic); ok {
			b.intrinsics = append(b.intrinsics, in)
		}
	}

	tree := b.res.Tree
	b.res.Root = tree.MustAdd(model.NoSymbol, model.Symbol{Name: RootName, Kind: model.Context})
	for _, inst := range cfg.Instances {
		id, err := tree.Add(b.res.Root, model.Symbol{
			Name:             inst.Name,
			Kind:             model.Instance,
			DeclaredLocation: paths.Clean(inst.Path),
			KindTypeName:     inst.Kind,
		})
		if err != nil {
			b.errorf("instance %q: %v", inst.Name, err)
			continue
		}
		b.res.Instances = append(b.res.Instances, id)
		kind := cfg.Kinds[inst.Kind]
		b.addMembers(id, inst.Kind, kind.Members, []string{inst.Kind})
	}

	for _, id := range b.res.Instances {
		b.constraints(id)
	}
	if p, ok := b.byName[plugins.Scope{}.ConstraintName()].(plugins.Generator); ok {
		for _, id := range b.res.Instances {
			kindName := tree.Symbol(id).KindTypeName
			scope := cfg.Kinds[kindName].Scope
			if scope == "" {
				continue
			}
			b.collect(p.Generate(plugins.Value{Kind: plugins.String, Str: scope}, tree, id, kindName, "type:"+kindName))
		}
	}
	if _, ok := b.byName[plugins.Overlap{}.ConstraintName()]; ok {
		for _, id := range b.res.Instances {
			b.res.Contracts = append(b.res.Contracts, plugins.SiblingOverlaps(tree, id)...)
		}
	}

	b.attach()
	return b.res
}

// addMembers adds the members of a kind below parent. Members without
// their own member list inherit the members of their kind. stack guards
// against kinds that contain themselves.
func (b *binder) addMembers(parent model.SymbolID, kindName string, members []config.Member, stack []string) {
	tree := b.res.Tree
	base := tree.Symbol(parent).DeclaredLocation
	for _, m := range members {
		rel, derived := m.Path, false
		if rel == "" {
			rel, derived = m.Name, true
		}
		loc := rel
		if base != "" {
			loc = paths.Join(base, rel)
		}
		id, err := tree.Add(parent, model.Symbol{
			Name:             m.Name,
			Kind:             model.Member,
			DeclaredLocation: paths.Clean(loc),
			KindTypeName:     m.Kind,
			LocationDerived:  derived,
		})
		if err != nil {
			b.errorf("Kind<%s>: %v", kindName, err)
			continue
		}

		children := m.Members
		if len(children) == 0 && m.Kind != "" {
			if contains(stack, m.Kind) {
				b.errorf("Kind<%s>: member '%s' nests its own kind '%s'.", kindName, m.Name, m.Kind)
				continue
			}
			children = b.cfg.Kinds[m.Kind].Members
		}
		next := stack
		if m.Kind != "" {
			next = append(append([]string(nil), stack...), m.Kind)
		}
		b.addMembers(id, kindName, children, next)
	}
}

// constraints generates the contracts an instance's kind declares and the
// intrinsic contracts its members' kinds imply.
func (b *binder) constraints(instance model.SymbolID) {
	tree := b.res.Tree
	kindName := tree.Symbol(instance).KindTypeName
	kind := b.cfg.Kinds[kindName]
	location := "type:" + kindName

	if len(kind.Constraints) > 0 {
		v, err := plugins.ValueOf(kind.Constraints)
		if err != nil {
			b.errorf("Kind<%s>: constraints: %v", kindName, err)
		} else {
			b.walk(v, instance, kindName, location, "")
		}
	}

	for _, m := range kind.Members {
		member, ok := tree.Member(instance, m.Name)
		if !ok {
			continue
		}
		shape := b.memberShape(m)
		for _, in := range b.intrinsics {
			if !in.Detect(shape) {
				continue
			}
			c := in.Propagate(member, m.Name, location)
			if !b.declared(c) {
				b.res.Contracts = append(b.res.Contracts, c)
			}
		}
	}
}

// memberShape is the constraint object of a member's kind, with the
// member's own pure flag folded in.
func (b *binder) memberShape(m config.Member) plugins.Value {
	shape := plugins.Value{Kind: plugins.Object}
	if m.Kind != "" {
		if raw := b.cfg.Kinds[m.Kind].Constraints; len(raw) > 0 {
			if v, err := plugins.ValueOf(raw); err == nil {
				shape = v
			}
		}
	}
	if m.Pure {
		if _, ok := shape.Property("pure"); !ok {
			shape.Properties = append(shape.Properties, plugins.Property{
				Name:  "pure",
				Value: plugins.Value{Kind: plugins.Boolean, Bool: true},
			})
		}
	}
	return shape
}

// declared reports whether a single-argument contract of the same type
// already exists for the same symbol.
func (b *binder) declared(c model.Contract) bool {
	for _, have := range b.res.Contracts {
		if have.Type == c.Type && len(have.Args) == 1 && len(c.Args) == 1 && have.Args[0] == c.Args[0] {
			return true
		}
	}
	return false
}

func (b *binder) walk(v plugins.Value, instance model.SymbolID, kindName, location, prefix string) {
	for _, prop := range v.Properties {
		name := prop.Name
		if prefix != "" {
			name = prefix + "." + prop.Name
		}
		if prop.Value.Kind == plugins.Object {
			b.walk(prop.Value, instance, kindName, location, name)
			continue
		}

		p, ok := b.byName[name]
		if !ok {
			b.errorf("Unknown constraint '%s' in Kind<%s>.", name, kindName)
			continue
		}
		gen, ok := p.(plugins.Generator)
		if !ok {
			if _, intrinsic := p.(plugins.Intrinsic); !intrinsic {
				b.errorf("Constraint '%s' in Kind<%s> is implied and cannot be declared.", name, kindName)
			}
			continue
		}
		b.collect(gen.Generate(prop.Value, b.res.Tree, instance, kindName, location))
	}
}

func (b *binder) collect(g plugins.GenerateResult) {
	b.res.Contracts = append(b.res.Contracts, g.Contracts...)
	b.res.Errors = append(b.res.Errors, g.Errors...)
}

// attach records a reference to every contract on the symbols it names.
func (b *binder) attach() {
	for _, c := range b.res.Contracts {
		ref := c.Reference()
		seen := make(map[model.SymbolID]bool, len(c.Args))
		for _, id := range c.Args {
			if seen[id] {
				continue
			}
			seen[id] = true
			if sym := b.res.Tree.Symbol(id); sym != nil {
				sym.Contracts = append(sym.Contracts, ref)
			}
		}
	}
}

func (b *binder) errorf(format string, args ...any) {
	b.res.Errors = append(b.res.Errors, fmt.Sprintf(format, args...))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ContractsByType groups contracts by type, keeping order within a type.
func ContractsByType(contracts []model.Contract) map[model.ContractType][]model.Contract {
	out := make(map[model.ContractType][]model.Contract)
	for _, c := range contracts {
		out[c.Type] = append(out[c.Type], c)
	}
	return out
}

// Summary renders per-type contract counts in type order, e.g.
// "noDependency=2 purity=1".
func Summary(contracts []model.Contract) string {
	byType := ContractsByType(contracts)
	types := make([]model.ContractType, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s=%d", t, len(byType[t]))
	}
	return strings.Join(parts, " ")
}
