package plugins

import (
	"fmt"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
)

// Exists requires each listed symbol's location to be present on disk, as
// recorded by the resolved-files map. An empty directory counts as present.
type Exists struct{}

func (Exists) Type() model.ContractType  { return model.Exists }
func (Exists) ConstraintName() string    { return "filesystem.exists" }
func (Exists) DiagnosticCode() diag.Code { return diag.MissingLocation }

func (Exists) Validate(args []model.SymbolID) string {
	return arityAtLeast("exists", 1, args)
}

func (p Exists) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	return generateFromStringList(v, tree, instance, kindName, location, model.Exists, p.ConstraintName())
}

func (Exists) Check(c model.Contract, cc *Context) Result {
	var res Result
	for _, id := range c.Args {
		sym := cc.Tree.Symbol(id)
		if sym == nil || sym.DeclaredLocation == "" {
			continue
		}
		if _, present := cc.ResolvedFiles[sym.Key()]; present {
			continue
		}

		root := sym.DeclaredLocation
		what := "Declared"
		if sym.LocationDerived {
			what = "Derived"
			if parent := cc.Tree.Symbol(sym.Parent); parent != nil && parent.DeclaredLocation != "" {
				root = parent.DeclaredLocation
			}
		}
		msg := fmt.Sprintf("%s location for member '%s' does not exist: '%s'", what, sym.Name, sym.DeclaredLocation)
		src := diag.DerivedRef{Member: sym.Name, KindTypeName: sym.KindTypeName, Root: root}
		res.Diagnostics = append(res.Diagnostics, diag.New(diag.MissingLocation, src, msg).WithContract(c))
	}
	return res
}
