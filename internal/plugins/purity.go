package plugins

import (
	"fmt"
	"strings"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
)

// nodeBuiltins are host modules that perform I/O or touch process state.
var nodeBuiltins = map[string]struct{}{
	"assert": {}, "async_hooks": {}, "buffer": {}, "child_process": {},
	"cluster": {}, "console": {}, "crypto": {}, "dgram": {},
	"diagnostics_channel": {}, "dns": {}, "domain": {}, "events": {},
	"fs": {}, "http": {}, "http2": {}, "https": {}, "inspector": {},
	"module": {}, "net": {}, "os": {}, "path": {}, "perf_hooks": {},
	"process": {}, "punycode": {}, "querystring": {}, "readline": {},
	"repl": {}, "stream": {}, "string_decoder": {}, "sys": {},
	"timers": {}, "tls": {}, "trace_events": {}, "tty": {}, "url": {},
	"util": {}, "v8": {}, "vm": {}, "wasi": {}, "worker_threads": {},
	"zlib": {},
}

// IsHostModule reports whether spec names a Node built-in, with or without
// the node: prefix, including subpaths such as fs/promises.
func IsHostModule(spec string) bool {
	spec = strings.TrimPrefix(spec, "node:")
	if i := strings.IndexByte(spec, '/'); i >= 0 {
		spec = spec[:i]
	}
	_, ok := nodeBuiltins[spec]
	return ok
}

// Purity forbids a symbol's files from importing host I/O modules.
type Purity struct{}

func (Purity) Type() model.ContractType  { return model.Purity }
func (Purity) ConstraintName() string    { return "pure" }
func (Purity) DiagnosticCode() diag.Code { return diag.ImpureImport }

func (Purity) CodeFix() CodeFix {
	return CodeFix{
		Name:        "archcheck-remove-impure-import",
		Description: "Remove this import (impure import in pure layer)",
	}
}

func (Purity) Validate(args []model.SymbolID) string {
	return arityExactly("purity", 1, "symbol", args)
}

func (Purity) Check(c model.Contract, cc *Context) Result {
	files, _, ok := cc.Files(c.Args[0])
	if !ok {
		return Result{}
	}
	name := cc.Tree.Name(c.Args[0])

	var res Result
	for _, file := range files {
		for _, spec := range cc.Provider.ImportSpecifiers(file) {
			if !IsHostModule(spec.Module) {
				continue
			}
			msg := fmt.Sprintf("Impure import in '%s': '%s'", name, spec.Module)
			src := diag.FileRef{File: file, Line: spec.Line, Column: spec.Column}
			res.Diagnostics = append(res.Diagnostics, diag.New(diag.ImpureImport, src, msg).WithContract(c))
		}
	}
	res.FilesAnalyzed = len(files)
	return res
}

// Detect reports whether a kind's constraints declare pure: true.
func (Purity) Detect(shape Value) bool {
	if shape.Kind != Object {
		return false
	}
	v, ok := shape.Property("pure")
	return ok && v.Kind == Boolean && v.Bool
}

func (Purity) Propagate(member model.SymbolID, memberName, location string) model.Contract {
	return model.Contract{
		Type:     model.Purity,
		Name:     fmt.Sprintf("purity(%s)", memberName),
		Args:     []model.SymbolID{member},
		Location: location,
	}
}
