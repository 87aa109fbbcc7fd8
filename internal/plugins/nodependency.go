package plugins

import (
	"fmt"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// NoDependency forbids any file of the first symbol from importing a file
// of the second.
type NoDependency struct{}

func (NoDependency) Type() model.ContractType  { return model.NoDependency }
func (NoDependency) ConstraintName() string    { return "noDependency" }
func (NoDependency) DiagnosticCode() diag.Code { return diag.ForbiddenDependency }

func (NoDependency) CodeFix() CodeFix {
	return CodeFix{
		Name:        "archcheck-remove-forbidden-import",
		Description: "Remove this import (forbidden dependency)",
	}
}

func (NoDependency) Validate(args []model.SymbolID) string {
	return arityExactly("noDependency", 2, "from, to", args)
}

func (p NoDependency) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	return generateFromTuplePairs(v, tree, instance, kindName, location, model.NoDependency, p.ConstraintName())
}

func (NoDependency) Check(c model.Contract, cc *Context) Result {
	from, to := c.Args[0], c.Args[1]
	fromFiles, _, ok := cc.Files(from)
	if !ok {
		return Result{}
	}
	toFiles, toKey, ok := cc.Files(to)
	if !ok {
		return Result{}
	}
	toSet := paths.NewSet(toFiles)
	fromName, toName := cc.Tree.Name(from), cc.Tree.Name(to)

	var res Result
	for _, file := range fromFiles {
		for _, imp := range cc.Provider.Imports(file) {
			if !paths.InSymbol(imp.TargetFile, toKey, toSet) {
				continue
			}
			msg := fmt.Sprintf("Forbidden dependency: %s → %s (%s → %s)", fromName, toName, imp.SourceFile, imp.TargetFile)
			src := diag.FileRef{File: imp.SourceFile, Line: imp.Line, Column: imp.Column}
			res.Diagnostics = append(res.Diagnostics, diag.New(diag.ForbiddenDependency, src, msg).WithContract(c))
		}
	}
	res.FilesAnalyzed = len(fromFiles)
	return res
}
