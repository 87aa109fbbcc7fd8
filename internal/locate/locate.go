// Package locate maps architecture symbols to project files: it fills each
// symbol's carrier and file list and produces the resolved-files map, the
// instance container listings and the ownership tree used during checking.
package locate

import (
	"io/fs"
	"strings"

	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
)

// Result is the output of Locate.
type Result struct {
	// ResolvedFiles maps a location to its files. A key is present when
	// files matched or the location exists on disk.
	ResolvedFiles map[string][]string
	// ContainerFiles maps an instance scope to every file it owns,
	// excluding files owned by nested instances.
	ContainerFiles map[string][]string
	Ownership      *OwnershipTree
}

// Locate resolves every located symbol in tree against files (sorted,
// slash paths relative to the project root). fsys, when non-nil, is
// consulted for locations that matched no file so that empty directories
// still count as present. Symbols are updated in place.
func Locate(tree *model.Tree, files []string, fsys fs.FS) *Result {
	res := &Result{
		ResolvedFiles:  make(map[string][]string),
		ContainerFiles: make(map[string][]string),
	}

	for _, id := range tree.All() {
		sym := tree.Symbol(id)
		loc := paths.Clean(sym.DeclaredLocation)
		if loc == "" {
			continue
		}
		matched, seen := res.ResolvedFiles[loc]
		if !seen {
			matched = match(files, loc)
			if len(matched) > 0 || exists(fsys, loc) {
				if matched == nil {
					matched = []string{}
				}
				res.ResolvedFiles[loc] = matched
			}
		}
		sym.Carrier = model.NewPathCarrier(loc, matched)
		sym.Files = matched
	}

	res.Ownership = BuildOwnershipTree(tree)
	for _, n := range res.Ownership.nodes {
		var owned []string
		for _, f := range tree.Symbol(n.Instance).Files {
			if owner, ok := res.Ownership.Owner(f); ok && owner != n {
				continue
			}
			owned = append(owned, f)
		}
		if len(owned) > 0 {
			res.ContainerFiles[n.Scope] = owned
		}
	}
	return res
}

// match returns the files equal to loc or under it, in input order.
func match(files []string, loc string) []string {
	var out []string
	prefix := loc + "/"
	for _, f := range files {
		if f == loc || strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func exists(fsys fs.FS, loc string) bool {
	if fsys == nil || !fs.ValidPath(loc) {
		return false
	}
	_, err := fs.Stat(fsys, loc)
	return err == nil
}
