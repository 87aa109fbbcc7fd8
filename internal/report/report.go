// Package report renders check results as compiler-style text, JSON or
// TOON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/phobologic/archcheck/internal/checker"
	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/plugins"
	"github.com/phobologic/archcheck/internal/toon"
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	TOON Format = "toon"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{Text, JSON, TOON} }

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want text, json or toon)", s)
}

// Options configures rendering.
type Options struct {
	Format Format
	Color  bool
	// Max limits the diagnostics printed; 0 prints all.
	Max int
}

// Run is one check run to render.
type Run struct {
	Project string
	Config  string
	Result  checker.Result
}

// UseColor resolves a --color mode (auto, on, off) for f.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	return !color.NoColor && f != nil && term.IsTerminal(int(f.Fd()))
}

// Write renders run to w.
func Write(w io.Writer, run Run, opts Options) error {
	switch opts.Format {
	case JSON:
		return writeJSON(w, run, opts)
	case TOON:
		doc := &toon.Document{
			Project:          run.Project,
			Config:           run.Config,
			ContractsChecked: run.Result.ContractsChecked,
			ViolationsFound:  run.Result.ViolationsFound,
			FilesAnalyzed:    run.Result.FilesAnalyzed,
			Diagnostics:      limit(run.Result.Diagnostics, opts.Max),
		}
		_, err := fmt.Fprintln(w, toon.Encode(doc))
		return err
	case Text, "":
		return writeText(w, run, opts)
	}
	return fmt.Errorf("unknown format %q", opts.Format)
}

func limit(ds []diag.Diagnostic, n int) []diag.Diagnostic {
	if n > 0 && len(ds) > n {
		return ds[:n]
	}
	return ds
}

type palette struct {
	loc, err, code, ok, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		loc:  color.New(color.FgCyan, color.Bold),
		err:  color.New(color.FgRed, color.Bold),
		code: color.New(color.FgHiBlack),
		ok:   color.New(color.FgGreen, color.Bold),
		dim:  color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.loc, p.err, p.code, p.ok, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// writeText prints one line per diagnostic:
//
//	src/a.ts:3:0 - error KS70001: Forbidden dependency: ...
//	ordering - error KS70007: Unassigned file: ...
func writeText(w io.Writer, run Run, opts Options) error {
	p := newPalette(opts.Color)
	res := run.Result
	shown := limit(res.Diagnostics, opts.Max)
	for _, d := range shown {
		where := "<unknown>"
		if d.Source != nil {
			where = d.Source.String()
		}
		line := fmt.Sprintf("%s - %s %s: %s", p.loc.Sprint(where), p.err.Sprint("error"), p.code.Sprint(d.Code.ID()), d.Message)
		if d.Contract != nil {
			line += p.dim.Sprintf(" [%s]", d.Contract.Name)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if hidden := len(res.Diagnostics) - len(shown); hidden > 0 {
		if _, err := fmt.Fprintf(w, "... and %d more\n", hidden); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d contracts checked, %d violations, %d files analyzed",
		res.ContractsChecked, res.ViolationsFound, res.FilesAnalyzed)
	if res.ViolationsFound == 0 {
		summary = p.ok.Sprint(summary)
	} else {
		summary = p.err.Sprint(summary)
	}
	if len(shown) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

type locationJSON struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type diagnosticJSON struct {
	Code     string                   `json:"code"`
	Title    string                   `json:"title"`
	Message  string                   `json:"message"`
	Location *locationJSON            `json:"location,omitempty"`
	Scope    string                   `json:"scope,omitempty"`
	Contract *model.ContractReference `json:"contract,omitempty"`
}

type outputJSON struct {
	Project          string           `json:"project"`
	Config           string           `json:"config"`
	ContractsChecked int              `json:"contractsChecked"`
	ViolationsFound  int              `json:"violationsFound"`
	FilesAnalyzed    int              `json:"filesAnalyzed"`
	Diagnostics      []diagnosticJSON `json:"diagnostics"`
}

func writeJSON(w io.Writer, run Run, opts Options) error {
	out := outputJSON{
		Project:          run.Project,
		Config:           run.Config,
		ContractsChecked: run.Result.ContractsChecked,
		ViolationsFound:  run.Result.ViolationsFound,
		FilesAnalyzed:    run.Result.FilesAnalyzed,
		Diagnostics:      []diagnosticJSON{},
	}
	for _, d := range limit(run.Result.Diagnostics, opts.Max) {
		dj := diagnosticJSON{
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Contract: d.Contract,
		}
		if ref, ok := d.File(); ok {
			dj.Location = &locationJSON{File: ref.File, Line: ref.Line, Column: ref.Column}
		} else if d.Source != nil {
			dj.Scope = d.Source.String()
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteCodes lists every diagnostic code with the constraint of the plugin
// that reports it, or "-" when no plugin does.
func WriteCodes(w io.Writer, ps []plugins.Plugin) error {
	constraints := make(map[diag.Code]string, len(ps))
	for _, p := range ps {
		constraints[p.DiagnosticCode()] = p.ConstraintName()
	}
	for _, c := range diag.Codes() {
		name, ok := constraints[c]
		if !ok {
			name = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", uint32(c), c.ID(), c.Title(), name); err != nil {
			return err
		}
	}
	return nil
}
