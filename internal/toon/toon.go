// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/phobologic/archcheck/internal/diag"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Document is one check run as rendered by Encode.
type Document struct {
	Project          string
	Config           string
	ContractsChecked int
	ViolationsFound  int
	FilesAnalyzed    int
	Diagnostics      []diag.Diagnostic
}

// Encode converts a check run into TOON format.
func Encode(doc *Document) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(doc.Project)))
	parts = append(parts, fmt.Sprintf("config: %s", encodeValue(doc.Config)))
	parts = append(parts, fmt.Sprintf("contracts: %d", doc.ContractsChecked))
	parts = append(parts, fmt.Sprintf("violations: %d", doc.ViolationsFound))
	parts = append(parts, fmt.Sprintf("files: %d", doc.FilesAnalyzed))

	var rows [][]string
	counts := make(map[diag.Code]int)
	for i := range doc.Diagnostics {
		d := &doc.Diagnostics[i]
		counts[d.Code]++
		var file, line, column, scope, contract string
		if ref, ok := d.File(); ok {
			file = ref.File
			line = strconv.Itoa(ref.Line)
			column = strconv.Itoa(ref.Column)
		} else if d.Source != nil {
			scope = d.Source.String()
		}
		if d.Contract != nil {
			contract = d.Contract.Name
		}
		rows = append(rows, []string{d.Code.ID(), file, line, column, scope, d.Message, contract})
	}
	parts = append(parts, formatTabular("diagnostics",
		[]string{"code", "file", "line", "column", "scope", "message", "contract"}, rows))

	if len(counts) > 0 {
		codes := make([]diag.Code, 0, len(counts))
		for c := range counts {
			codes = append(codes, c)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		var countRows [][]string
		for _, c := range codes {
			countRows = append(countRows, []string{c.ID(), c.Title(), strconv.Itoa(counts[c])})
		}
		parts = append(parts, formatTabular("codes", []string{"code", "title", "count"}, countRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
