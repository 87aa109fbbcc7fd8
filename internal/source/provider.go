// Package source answers import and declaration questions about project
// files. Plugins depend only on the Provider interface.
package source

// ImportEdge is an import of one project file by another. Line is 1-based,
// Column 0-based, both at the start of the import declaration.
type ImportEdge struct {
	SourceFile string
	TargetFile string
	Line       int
	Column     int
	Specifier  string
}

// Specifier is a raw, unresolved import module string.
type Specifier struct {
	Module string
	Line   int
	Column int
}

// Provider is the source model. A file the provider cannot load yields
// empty answers. Implementations must be safe for concurrent use.
type Provider interface {
	// Imports returns the import edges of file that resolve to project files.
	Imports(file string) []ImportEdge
	// ImportSpecifiers returns every import module specifier of file.
	ImportSpecifiers(file string) []Specifier
	// ExportedInterfaces returns the names of interfaces file exports.
	ExportedInterfaces(file string) []string
	// Implements reports whether a class in file implements iface.
	Implements(file, iface string) bool
}
