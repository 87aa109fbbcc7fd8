package diag

import "fmt"

// SourceRef says where a diagnostic points. It is one of FileRef,
// StructuralRef or DerivedRef.
type SourceRef interface {
	sourceRef()
	String() string
}

// FileRef points at a position in a file. Line is 1-based, Column 0-based.
// Line 0 means the whole file.
type FileRef struct {
	File   string
	Line   int
	Column int
}

// StructuralRef points at a symbol or subtree rather than a file position.
type StructuralRef struct {
	Scope string
}

// DerivedRef points at a member whose location was derived from its
// instance root and kind type.
type DerivedRef struct {
	Member       string
	KindTypeName string
	Root         string
}

func (FileRef) sourceRef()       {}
func (StructuralRef) sourceRef() {}
func (DerivedRef) sourceRef()    {}

func (r FileRef) String() string {
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Column)
}

func (r StructuralRef) String() string {
	if r.Scope == "" {
		return "<structural>"
	}
	return r.Scope
}

func (r DerivedRef) String() string {
	if r.KindTypeName == "" {
		return fmt.Sprintf("%s (derived from %s)", r.Member, r.Root)
	}
	return fmt.Sprintf("%s (%s, derived from %s)", r.Member, r.KindTypeName, r.Root)
}
