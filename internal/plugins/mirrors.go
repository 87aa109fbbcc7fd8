package plugins

import (
	"fmt"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// Mirrors requires every file of the primary symbol to have a counterpart
// at the same relative path under the related symbol.
type Mirrors struct{}

func (Mirrors) Type() model.ContractType  { return model.Mirrors }
func (Mirrors) ConstraintName() string    { return "filesystem.mirrors" }
func (Mirrors) DiagnosticCode() diag.Code { return diag.MirrorMismatch }

func (Mirrors) Validate(args []model.SymbolID) string {
	return arityExactly("mirrors", 2, "primary, related", args)
}

func (p Mirrors) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	return generateFromTuplePairs(v, tree, instance, kindName, location, model.Mirrors, p.ConstraintName())
}

func (Mirrors) Check(c model.Contract, cc *Context) Result {
	primaryFiles, primaryLoc, ok := cc.Files(c.Args[0])
	if !ok {
		return Result{}
	}
	relatedFiles, relatedLoc, ok := cc.Files(c.Args[1])
	if !ok {
		return Result{}
	}

	counterparts := make(paths.Set, len(relatedFiles))
	for _, f := range relatedFiles {
		counterparts[paths.Relative(relatedLoc, f)] = struct{}{}
	}

	var res Result
	for _, file := range primaryFiles {
		rel := paths.Relative(primaryLoc, file)
		if counterparts.Has(rel) {
			continue
		}
		msg := fmt.Sprintf("File '%s' has no counterpart at '%s'", file, paths.Join(relatedLoc, rel))
		res.Diagnostics = append(res.Diagnostics,
			diag.New(diag.MirrorMismatch, diag.FileRef{File: file}, msg).WithContract(c))
	}
	res.FilesAnalyzed = len(primaryFiles)
	return res
}
