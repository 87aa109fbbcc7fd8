package plugins

import (
	"fmt"
	"strings"

	"github.com/phobologic/archcheck/internal/model"
)

func memberNotFound(kindName, member string, tree *model.Tree, instance model.SymbolID) string {
	return fmt.Sprintf("Kind<%s>: member '%s' not found in instance '%s'.", kindName, member, tree.Name(instance))
}

// generateFromTuplePairs creates one contract per pair, named
// "<constraint>(a -> b)".
func generateFromTuplePairs(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string, typ model.ContractType, constraint string) GenerateResult {
	var res GenerateResult
	if v.Kind != TuplePairs {
		return res
	}
	for _, pair := range v.Pairs {
		first, ok := tree.FindByPath(instance, pair[0])
		if !ok {
			res.Errors = append(res.Errors, memberNotFound(kindName, pair[0], tree, instance))
			continue
		}
		second, ok := tree.FindByPath(instance, pair[1])
		if !ok {
			res.Errors = append(res.Errors, memberNotFound(kindName, pair[1], tree, instance))
			continue
		}
		res.Contracts = append(res.Contracts, model.Contract{
			Type:     typ,
			Name:     fmt.Sprintf("%s(%s -> %s)", constraint, pair[0], pair[1]),
			Args:     []model.SymbolID{first, second},
			Location: location,
		})
	}
	return res
}

// generateFromStringList creates a single contract over every listed
// member, named "<constraint>(a, b, c)".
func generateFromStringList(v Value, tree *model.Tree, instance model.SymbolID, kindName, location string, typ model.ContractType, constraint string) GenerateResult {
	var res GenerateResult
	if v.Kind != StringList {
		return res
	}
	var args []model.SymbolID
	var names []string
	for _, name := range v.Strings {
		id, ok := tree.FindByPath(instance, name)
		if !ok {
			res.Errors = append(res.Errors, memberNotFound(kindName, name, tree, instance))
			continue
		}
		args = append(args, id)
		names = append(names, tree.Name(id))
	}
	if len(args) > 0 {
		res.Contracts = append(res.Contracts, model.Contract{
			Type:     typ,
			Name:     fmt.Sprintf("%s(%s)", constraint, strings.Join(names, ", ")),
			Args:     args,
			Location: location,
		})
	}
	return res
}
