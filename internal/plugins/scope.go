package plugins

import (
	"fmt"
	"strings"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// Scope shapes a kind may require of its instances.
const (
	ScopeFolder = "folder"
	ScopeFile   = "file"
)

// Scope checks that an instance's location has the shape its kind
// requires. The expected shape is encoded in the contract name as
// scope:folder(...) or scope:file(...).
type Scope struct{}

func (Scope) Type() model.ContractType  { return model.Scope }
func (Scope) ConstraintName() string    { return "scope" }
func (Scope) DiagnosticCode() diag.Code { return diag.ScopeMismatch }

func (Scope) Validate(args []model.SymbolID) string {
	return arityExactly("scope", 1, "instance symbol", args)
}

// Generate builds the scope contract for instance from a "folder" or
// "file" value.
func (Scope) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	if v.Kind != String || (v.Str != ScopeFolder && v.Str != ScopeFile) {
		return GenerateResult{Errors: []string{fmt.Sprintf("scope in Kind<%s> must be '%s' or '%s'.", kindName, ScopeFolder, ScopeFile)}}
	}
	return GenerateResult{Contracts: []model.Contract{{
		Type:     model.Scope,
		Name:     fmt.Sprintf("scope:%s(%s)", v.Str, tree.Name(instance)),
		Args:     []model.SymbolID{instance},
		Location: location,
	}}}
}

func (Scope) Check(c model.Contract, cc *Context) Result {
	sym := cc.Tree.Symbol(c.Args[0])
	if sym == nil || sym.Carrier == nil || sym.Carrier.Kind != model.PathCarrier {
		return Result{}
	}
	location := sym.Carrier.Path
	isFile := paths.HasSourceSuffix(location)

	var msg string
	if strings.HasPrefix(c.Name, "scope:"+ScopeFolder) {
		switch {
		case isFile:
			msg = fmt.Sprintf("Scope mismatch for '%s': Kind requires folder scope, but location '%s' is a file", sym.Name, location)
		case len(sym.Files) == 0:
			msg = fmt.Sprintf("Scope mismatch for '%s': Kind requires folder scope, but folder '%s' was not found", sym.Name, location)
		}
	} else {
		switch {
		case !isFile:
			msg = fmt.Sprintf("Scope mismatch for '%s': Kind requires file scope, but location '%s' is a folder", sym.Name, location)
		case len(sym.Files) == 0:
			msg = fmt.Sprintf("Scope mismatch for '%s': Kind requires file scope, but file '%s' was not found", sym.Name, location)
		}
	}
	if msg == "" {
		return Result{}
	}
	d := diag.New(diag.ScopeMismatch, diag.StructuralRef{Scope: sym.Name}, msg).WithContract(c)
	return Result{Diagnostics: []diag.Diagnostic{d}}
}
