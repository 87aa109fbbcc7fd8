package plugins

import (
	"fmt"
	"strings"

	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

const overlapListed = 3

// Overlap forbids two sibling members from sharing files. Its contracts
// are generated for every sibling pair, never declared.
type Overlap struct{}

func (Overlap) Type() model.ContractType  { return model.Overlap }
func (Overlap) ConstraintName() string    { return "overlap" }
func (Overlap) DiagnosticCode() diag.Code { return diag.OverlappingMembers }

func (Overlap) Validate(args []model.SymbolID) string {
	return arityExactly("overlap", 2, "two sibling members", args)
}

// SiblingOverlaps returns an overlap contract for every pair of direct
// members of instance, in member order.
func SiblingOverlaps(tree *model.Tree, instance model.SymbolID) []model.Contract {
	members := tree.Members(instance)
	location := "instance:" + tree.Name(instance)
	var out []model.Contract
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			out = append(out, model.Contract{
				Type:     model.Overlap,
				Name:     fmt.Sprintf("overlap:%s/%s", tree.Name(members[i]), tree.Name(members[j])),
				Args:     []model.SymbolID{members[i], members[j]},
				Location: location,
			})
		}
	}
	return out
}

func (Overlap) Check(c model.Contract, cc *Context) Result {
	aFiles, _, ok := cc.Files(c.Args[0])
	if !ok {
		return Result{}
	}
	bFiles, _, ok := cc.Files(c.Args[1])
	if !ok {
		return Result{}
	}

	bSet := paths.NewSet(bFiles)
	var shared []string
	for _, f := range aFiles {
		if bSet.Has(f) {
			shared = append(shared, f)
		}
	}
	if len(shared) == 0 {
		return Result{}
	}

	listed := shared
	if len(listed) > overlapListed {
		listed = listed[:overlapListed]
	}
	list := strings.Join(listed, ", ")
	if len(shared) > overlapListed {
		list += ", ..."
	}
	a, b := cc.Tree.Name(c.Args[0]), cc.Tree.Name(c.Args[1])
	msg := fmt.Sprintf("Overlapping members '%s' and '%s' share %d file(s): %s", a, b, len(shared), list)
	d := diag.New(diag.OverlappingMembers, diag.StructuralRef{Scope: a}, msg).WithContract(c)
	return Result{Diagnostics: []diag.Diagnostic{d}}
}
