package plugins

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

var testFileRe = regexp.MustCompile(`\.(test|spec)\.(ts|tsx)$`)

// excludedFromExhaustiveness reports files never required to belong to a
// member: instance declaration files and tests.
func excludedFromExhaustiveness(file string) bool {
	switch {
	case strings.HasSuffix(file, "/context.ts"), strings.HasSuffix(file, "/context.tsx"):
		return true
	case testFileRe.MatchString(file):
		return true
	case strings.Contains(file, "/__tests__/"):
		return true
	}
	return false
}

// Exhaustiveness requires every file an instance owns to belong to one of
// its members.
type Exhaustiveness struct{}

func (Exhaustiveness) Type() model.ContractType  { return model.Exhaustiveness }
func (Exhaustiveness) ConstraintName() string    { return "exhaustive" }
func (Exhaustiveness) DiagnosticCode() diag.Code { return diag.UnassignedFile }

func (Exhaustiveness) Validate(args []model.SymbolID) string {
	return arityExactly("exhaustiveness", 1, "instance symbol", args)
}

// Generate builds one contract for instance from exhaustive: true.
func (Exhaustiveness) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	if v.Kind != Boolean {
		return GenerateResult{Errors: []string{fmt.Sprintf("exhaustive in Kind<%s> must be true (boolean).", kindName)}}
	}
	if !v.Bool {
		return GenerateResult{}
	}
	return GenerateResult{Contracts: []model.Contract{{
		Type:     model.Exhaustiveness,
		Name:     "exhaustive:" + tree.Name(instance),
		Args:     []model.SymbolID{instance},
		Location: location,
	}}}
}

func (Exhaustiveness) Check(c model.Contract, cc *Context) Result {
	inst := cc.Tree.Symbol(c.Args[0])
	if inst == nil || inst.Key() == "" {
		return Result{}
	}
	container := cc.ContainerFiles[inst.Key()]
	if len(container) == 0 {
		return Result{}
	}

	assigned := make(paths.Set)
	for _, m := range cc.Tree.Members(c.Args[0]) {
		files, _, _ := cc.Files(m)
		for _, f := range files {
			assigned[f] = struct{}{}
		}
	}

	var res Result
	for _, f := range container {
		if assigned.Has(f) || excludedFromExhaustiveness(f) {
			continue
		}
		msg := fmt.Sprintf(`Unassigned file: "%s" is not in any member of %s`, f, inst.Name)
		res.Diagnostics = append(res.Diagnostics,
			diag.New(diag.UnassignedFile, diag.StructuralRef{Scope: inst.Name}, msg).WithContract(c))
	}
	return res
}
