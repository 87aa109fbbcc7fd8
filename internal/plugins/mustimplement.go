package plugins

import (
	"fmt"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
)

// MustImplement requires every interface exported by the ports symbol to
// have an implementing class somewhere in the adapters symbol.
type MustImplement struct{}

func (MustImplement) Type() model.ContractType  { return model.MustImplement }
func (MustImplement) ConstraintName() string    { return "mustImplement" }
func (MustImplement) DiagnosticCode() diag.Code { return diag.MissingImplementation }

func (MustImplement) Validate(args []model.SymbolID) string {
	return arityExactly("mustImplement", 2, "interface, implementation", args)
}

func (p MustImplement) Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult {
	return generateFromTuplePairs(v, tree, instance, kindName, location, model.MustImplement, p.ConstraintName())
}

func (MustImplement) Check(c model.Contract, cc *Context) Result {
	portFiles, _, ok := cc.Files(c.Args[0])
	if !ok {
		return Result{}
	}
	adapterFiles, adaptersKey, ok := cc.Files(c.Args[1])
	if !ok {
		return Result{}
	}

	var interfaces []string
	for _, f := range portFiles {
		interfaces = append(interfaces, cc.Provider.ExportedInterfaces(f)...)
	}

	scope := c.Location
	if scope == "" {
		scope = adaptersKey
	}

	var res Result
	for _, iface := range interfaces {
		if implemented(cc, adapterFiles, iface) {
			continue
		}
		msg := fmt.Sprintf("Port '%s' has no corresponding adapter implementation (expected in '%s')", iface, adaptersKey)
		res.Diagnostics = append(res.Diagnostics,
			diag.New(diag.MissingImplementation, diag.StructuralRef{Scope: scope}, msg).WithContract(c))
	}
	res.FilesAnalyzed = len(portFiles) + len(adapterFiles)
	return res
}

func implemented(cc *Context, files []string, iface string) bool {
	for _, f := range files {
		if cc.Provider.Implements(f, iface) {
			return true
		}
	}
	return false
}
