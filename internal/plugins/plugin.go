// Package plugins implements archcheck's contract kinds. Each kind is a
// Plugin; optional capabilities (contract generation, intrinsic detection,
// editor fixes) are separate interfaces a plugin may also satisfy.
package plugins

import (
	"fmt"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/source"
)

// Context is the read-only data shared by every plugin during one run.
type Context struct {
	Tree     *model.Tree
	Provider source.Provider
	// ResolvedFiles maps a symbol location key to its ordered files.
	ResolvedFiles map[string][]string
	// ContainerFiles maps an instance carrier key to every file it owns.
	ContainerFiles map[string][]string
}

// Files returns the resolved files of id along with its location key.
// ok is false when the symbol is unknown or has no location.
func (cc *Context) Files(id model.SymbolID) (files []string, key string, ok bool) {
	sym := cc.Tree.Symbol(id)
	if sym == nil {
		return nil, "", false
	}
	key = sym.Key()
	if key == "" {
		return nil, "", false
	}
	return cc.ResolvedFiles[key], key, true
}

// Result is what a plugin reports for one contract.
type Result struct {
	Diagnostics   []diag.Diagnostic
	FilesAnalyzed int
}

// Plugin checks one contract kind.
type Plugin interface {
	Type() model.ContractType
	// ConstraintName is the key that declares this contract in a kind's constraints.
	ConstraintName() string
	DiagnosticCode() diag.Code
	// Validate returns a non-empty message when args have the wrong shape.
	Validate(args []model.SymbolID) string
	Check(c model.Contract, cc *Context) Result
}

// GenerateResult holds contracts synthesized from a constraint and the
// binding errors met on the way.
type GenerateResult struct {
	Contracts []model.Contract
	Errors    []string
}

// Generator is implemented by plugins whose contracts are declared as
// constraints on a kind.
type Generator interface {
	Generate(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string) GenerateResult
}

// Intrinsic is implemented by plugins whose contracts follow from the shape
// of a member's kind rather than from an explicit constraint.
type Intrinsic interface {
	Detect(shape Value) bool
	Propagate(member model.SymbolID, memberName, location string) model.Contract
}

// CodeFix describes an editor quick fix for a plugin's diagnostics.
type CodeFix struct {
	Name        string
	Description string
}

// CodeFixer is implemented by plugins that offer a quick fix.
type CodeFixer interface {
	CodeFix() CodeFix
}

// Builtins returns one instance of every built-in plugin, ordered by
// contract type.
func Builtins() []Plugin {
	return []Plugin{
		NoDependency{},
		MustImplement{},
		Purity{},
		NoCycles{},
		Mirrors{},
		Exists{},
		Scope{},
		Overlap{},
		Exhaustiveness{},
	}
}

func arityExactly(name string, n int, desc string, args []model.SymbolID) string {
	if len(args) == n {
		return ""
	}
	noun := "arguments"
	if n == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("%s requires exactly %d %s (%s), got %d", name, n, noun, desc, len(args))
}

func arityAtLeast(name string, n int, args []model.SymbolID) string {
	if len(args) >= n {
		return ""
	}
	noun := "arguments"
	if n == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("%s requires at least %d %s, got %d", name, n, noun, len(args))
}
