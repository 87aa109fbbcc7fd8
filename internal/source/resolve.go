package source

import (
	"path"
	"strings"

	"github.com/phobologic/archcheck/internal/paths"
)

var resolveExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// emitted maps the runtime extension written in an import to the source
// extensions it may have been compiled from.
var emitted = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// resolveSpecifier maps a relative import specifier written in from to a
// known project file. Non-relative specifiers are left to tsconfig aliases.
func resolveSpecifier(from, spec string, known paths.Set) (string, bool) {
	if !isRelative(spec) {
		return "", false
	}
	return resolveCandidate(path.Join(path.Dir(from), spec), known)
}

// isRelative reports whether spec is a "./" or "../" specifier.
func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".."
}

// resolveCandidate finds the known file for a cleaned project-relative
// module path: the path itself, its compiled-from source, an added
// extension, or an index file.
func resolveCandidate(base string, known paths.Set) (string, bool) {
	if strings.HasPrefix(base, "../") || base == ".." {
		return "", false
	}

	if ext := path.Ext(base); ext != "" {
		if known.Has(base) {
			return base, true
		}
		stem := strings.TrimSuffix(base, ext)
		for _, alt := range emitted[ext] {
			if known.Has(stem + alt) {
				return stem + alt, true
			}
		}
	}
	for _, ext := range resolveExtensions {
		if known.Has(base + ext) {
			return base + ext, true
		}
	}
	for _, ext := range resolveExtensions {
		idx := base + "/index" + ext
		if base == "." {
			idx = "index" + ext
		}
		if known.Has(idx) {
			return idx, true
		}
	}
	return "", false
}
