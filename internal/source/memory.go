package source

// Memory is a Provider backed by explicitly registered facts. It is meant
// for tests and for embedding archcheck where another tool already has a
// source model. Register everything before checking; reads are not
// synchronized with writes.
type Memory struct {
	imports    map[string][]ImportEdge
	specifiers map[string][]Specifier
	interfaces map[string][]string
	implements map[string]map[string]struct{}
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		imports:    make(map[string][]ImportEdge),
		specifiers: make(map[string][]Specifier),
		interfaces: make(map[string][]string),
		implements: make(map[string]map[string]struct{}),
	}
}

// AddImport records that src imports the project file target at line:col.
// The target path doubles as the raw specifier.
func (m *Memory) AddImport(src, target string, line, col int) *Memory {
	m.imports[src] = append(m.imports[src], ImportEdge{
		SourceFile: src,
		TargetFile: target,
		Line:       line,
		Column:     col,
		Specifier:  target,
	})
	m.specifiers[src] = append(m.specifiers[src], Specifier{Module: target, Line: line, Column: col})
	return m
}

// AddSpecifier records a raw import of module that resolves to no project file.
func (m *Memory) AddSpecifier(src, module string, line, col int) *Memory {
	m.specifiers[src] = append(m.specifiers[src], Specifier{Module: module, Line: line, Column: col})
	return m
}

// AddInterface records an exported interface declared in file.
func (m *Memory) AddInterface(file, name string) *Memory {
	m.interfaces[file] = append(m.interfaces[file], name)
	return m
}

// AddImplementation records a class in file implementing iface.
func (m *Memory) AddImplementation(file, iface string) *Memory {
	if m.implements[file] == nil {
		m.implements[file] = make(map[string]struct{})
	}
	m.implements[file][iface] = struct{}{}
	return m
}

func (m *Memory) Imports(file string) []ImportEdge {
	return m.imports[file]
}

func (m *Memory) ImportSpecifiers(file string) []Specifier {
	return m.specifiers[file]
}

func (m *Memory) ExportedInterfaces(file string) []string {
	return m.interfaces[file]
}

func (m *Memory) Implements(file, iface string) bool {
	_, ok := m.implements[file][iface]
	return ok
}
