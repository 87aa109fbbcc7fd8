// Package parse extracts import and declaration facts from TypeScript and
// JavaScript files using tree-sitter.
package parse

import (
	"context"
	"fmt"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/archcheck/internal/lang"
)

// Facts is everything the source model needs to know about one file.
type Facts struct {
	Path       string   `msgpack:"path"`
	Imports    []Import `msgpack:"imports"`
	Interfaces []string `msgpack:"interfaces"`
	Classes    []Class  `msgpack:"classes"`
	HasErrors  bool     `msgpack:"has_errors"`
}

// Import is one import declaration. Line is 1-based, Column 0-based,
// both taken from the start of the declaration.
type Import struct {
	Specifier string `msgpack:"specifier"`
	Line      int    `msgpack:"line"`
	Column    int    `msgpack:"column"`
}

// Class is a top-level class declaration and the interfaces it implements.
type Class struct {
	Name       string   `msgpack:"name"`
	Implements []string `msgpack:"implements"`
	Exported   bool     `msgpack:"exported"`
}

// Extract parses source with l's grammar and returns its facts.
// filePath is used only for Facts.Path.
func Extract(ctx context.Context, l *lang.Language, source []byte, filePath string) (*Facts, error) {
	facts := &Facts{Path: filePath}
	if len(source) == 0 {
		return facts, nil
	}

	parser := l.NewParser()
	defer parser.Close()
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return facts, nil
	}
	facts.HasErrors = root.HasError()

	query, err := l.GetImportQuery()
	if err != nil {
		return nil, fmt.Errorf("%s import query: %w", l.Name, err)
	}
	facts.Imports, err = extractImports(query, root, source)
	if err != nil {
		return nil, fmt.Errorf("extracting imports from %s: %w", filePath, err)
	}

	if l.Typed {
		extractDeclarations(root, source, facts)
	}
	return facts, nil
}

func extractImports(query *sitter.Query, root *sitter.Node, source []byte) ([]Import, error) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var imports []Import
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}

		var stmt, src *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "import":
				stmt = c.Node
			case "import.source":
				src = c.Node
			}
		}
		if stmt == nil || src == nil {
			continue
		}

		spec := unquote(lang.NodeText(src, source))
		if spec == "" {
			continue
		}
		line, err := safecast.Conv[int](stmt.StartPoint().Row)
		if err != nil {
			return nil, err
		}
		col, err := safecast.Conv[int](stmt.StartPoint().Column)
		if err != nil {
			return nil, err
		}
		imports = append(imports, Import{Specifier: spec, Line: line + 1, Column: col})
	}
	return imports, nil
}

// extractDeclarations walks top-level statements for exported interfaces
// and class declarations with implements clauses.
func extractDeclarations(root *sitter.Node, source []byte, facts *Facts) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "export_statement":
			processExport(child, source, facts)
		case "class_declaration", "abstract_class_declaration":
			if c, ok := processClass(child, source); ok {
				facts.Classes = append(facts.Classes, c)
			}
		}
	}
}

func processExport(node *sitter.Node, source []byte, facts *Facts) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "interface_declaration":
			if name := declarationName(child, source); name != "" {
				facts.Interfaces = append(facts.Interfaces, name)
			}
		case "class_declaration", "abstract_class_declaration", "class":
			if c, ok := processClass(child, source); ok {
				c.Exported = true
				facts.Classes = append(facts.Classes, c)
			}
		}
	}
}

func processClass(node *sitter.Node, source []byte) (Class, bool) {
	c := Class{Name: declarationName(node, source)}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "class_heritage" {
			c.Implements = implementsClause(child, source)
		}
	}
	return c, c.Name != ""
}

// implementsClause returns the interface names of an implements clause.
// Generic references such as Repo<T> contribute their base name.
func implementsClause(heritage *sitter.Node, source []byte) []string {
	var names []string
	for i := 0; i < int(heritage.NamedChildCount()); i++ {
		clause := heritage.NamedChild(i)
		if clause.Type() != "implements_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			t := clause.NamedChild(j)
			switch t.Type() {
			case "type_identifier":
				names = append(names, lang.NodeText(t, source))
			case "generic_type":
				if n := t.ChildByFieldName("name"); n != nil {
					names = append(names, lang.NodeText(n, source))
				}
			}
		}
	}
	return names
}

func declarationName(node *sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return lang.NodeText(n, source)
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && strings.ContainsRune("'\"`", rune(first)) {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ImplementsInterface reports whether any class in facts implements name.
func (f *Facts) ImplementsInterface(name string) bool {
	for _, c := range f.Classes {
		for _, impl := range c.Implements {
			if impl == name {
				return true
			}
		}
	}
	return false
}
