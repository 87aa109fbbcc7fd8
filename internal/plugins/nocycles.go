package plugins

import (
	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/graph"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// NoCycles forbids import cycles between the listed symbols.
type NoCycles struct{}

func (NoCycles) Type() model.ContractType  { return model.NoCycles }
func (NoCycles) ConstraintName() string    { return "noCycles" }
func (NoCycles) DiagnosticCode() diag.Code { return diag.CircularDependency }

func (NoCycles) Validate(args []model.SymbolID) string {
	return arityAtLeast("noCycles", 1, args)
}

func (p NoCycles) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	return generateFromStringList(v, tree, instance, kindName, location, model.NoCycles, p.ConstraintName())
}

type cycleNode struct {
	name  string
	key   string
	files []string
	set   paths.Set
}

func (NoCycles) Check(c model.Contract, cc *Context) Result {
	nodes := make([]cycleNode, 0, len(c.Args))
	g := graph.New()
	for _, id := range c.Args {
		sym := cc.Tree.Symbol(id)
		if sym == nil {
			continue
		}
		files, key, _ := cc.Files(id)
		nodes = append(nodes, cycleNode{name: sym.Name, key: key, files: files, set: paths.NewSet(files)})
		g.AddNode(sym.Name)
	}

	var res Result
	for _, from := range nodes {
		res.FilesAnalyzed += len(from.files)
		for _, file := range from.files {
			for _, imp := range cc.Provider.Imports(file) {
				for _, to := range nodes {
					if to.name == from.name || to.key == "" {
						continue
					}
					if paths.InSymbol(imp.TargetFile, to.key, to.set) {
						g.AddEdge(from.name, to.name)
					}
				}
			}
		}
	}

	for _, cycle := range g.FindCycles() {
		msg := "Circular dependency detected: " + graph.FormatCycle(cycle)
		res.Diagnostics = append(res.Diagnostics,
			diag.New(diag.CircularDependency, diag.StructuralRef{Scope: cycle[0]}, msg).WithContract(c))
	}
	return res
}
