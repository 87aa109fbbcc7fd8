// Package paths holds the slash-path helpers shared by the binder, the
// locator and the contract plugins. All paths are forward-slash paths.
package paths

import (
	"path"
	"strings"
)

// SourceSuffixes are the extensions treated as source files.
var SourceSuffixes = []string{".ts", ".tsx", ".js", ".jsx", ".mts", ".cts"}

// Set is a file-path set.
type Set map[string]struct{}

// NewSet builds a set from files.
func NewSet(files []string) Set {
	s := make(Set, len(files))
	for _, f := range files {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is in the set.
func (s Set) Has(f string) bool {
	_, ok := s[f]
	return ok
}

// Normalize converts backslashes to slashes and strips a trailing slash.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// InSymbol reports whether file belongs to a symbol with the given location.
// A file belongs when it is in files, equals the location, sits under the
// location at a segment boundary, or file is absolute and the location
// appears as a segment run inside it. Relative files only match by prefix.
func InSymbol(file, location string, files Set) bool {
	if files.Has(file) {
		return true
	}
	if location == "" {
		return false
	}
	f := strings.ReplaceAll(file, "\\", "/")
	loc := Normalize(location)
	if f == loc {
		return true
	}
	prefix := loc + "/"
	if strings.HasPrefix(f, prefix) {
		return true
	}
	return isAbs(f) && strings.Contains(f, "/"+prefix)
}

// isAbs reports whether p is rooted, including Windows drive paths.
func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) > 2 && p[1] == ':' && p[2] == '/'
}

// Relative returns the part of to after from. If to is not under from,
// to is returned unchanged.
func Relative(from, to string) string {
	from = Normalize(from)
	to = strings.ReplaceAll(to, "\\", "/")
	if strings.HasPrefix(to, from+"/") {
		return to[len(from)+1:]
	}
	return to
}

// Join concatenates base and rel with exactly one slash between them.
func Join(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

// Dir returns the directory part of p: "." when p has no slash.
func Dir(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	i := strings.LastIndex(p, "/")
	switch i {
	case -1:
		return "."
	case 0:
		return "/"
	}
	return p[:i]
}

// Resolve resolves rel ("." / "./x" / "../x") against the directory base.
func Resolve(base, rel string) string {
	base = Normalize(base)
	if rel == "." {
		return base
	}
	segs := strings.Split(base, "/")
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		case ".", "":
		default:
			segs = append(segs, seg)
		}
	}
	return strings.Join(segs, "/")
}

// HasSourceSuffix reports whether p ends in a source-file extension.
func HasSourceSuffix(p string) bool {
	ext := path.Ext(p)
	for _, s := range SourceSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// IsProperPrefix reports whether parent is a strict segment-boundary
// prefix of child.
func IsProperPrefix(parent, child string) bool {
	if parent == child || !strings.HasPrefix(child, parent) {
		return false
	}
	return child[len(parent)] == '/'
}

// Clean is path.Clean that maps "." to "".
func Clean(p string) string {
	p = path.Clean(Normalize(p))
	if p == "." {
		return ""
	}
	return p
}
