package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phobologic/archcheck/internal/infer"
	"github.com/phobologic/archcheck/internal/lang"
)

type inferOptions struct {
	write   bool
	force   bool
	name    string
	src     string
	langs   []string
	exclude []string
}

func newInferCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := inferOptions{}
	cmd := &cobra.Command{
		Use:   "infer [dir]",
		Short: "Derive an archcheck.yaml from the existing directory layout",
		Long: `Detect a clean, hexagonal or layered layout from the directory names
below src/ (or lib/, or the project root) and the imports between them, and
derive an architecture file that holds for the code as it is today.

The summary goes to stderr and the file to stdout. Nothing is written unless
--write is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}
			for _, name := range opts.langs {
				if _, ok := lang.Languages[name]; !ok {
					return fmt.Errorf("unsupported language %q", name)
				}
			}
			arch, err := infer.Detect(dir, infer.Options{
				SrcDir:    opts.src,
				Languages: opts.langs,
				Exclude:   opts.exclude,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			return runInfer(dir, arch, opts, stdout, stderr)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.write, "write", false, "write archcheck.yaml instead of printing it")
	f.BoolVar(&opts.force, "force", false, "overwrite an existing architecture file")
	f.StringVar(&opts.name, "name", "app", "name of the inferred instance")
	f.StringVar(&opts.src, "src", "", "source directory holding the layers, relative to dir")
	f.StringSliceVarP(&opts.langs, "langs", "l", nil, "languages to analyze")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "extra gitignore-style pattern to exclude (repeatable)")
	return cmd
}

func runInfer(dir string, arch *infer.Architecture, opts inferOptions, stdout, stderr io.Writer) error {
	for _, w := range arch.Warnings {
		_, _ = fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	cfg, err := arch.Config(opts.name, opts.langs)
	if errors.Is(err, infer.ErrNoLayers) || errors.Is(err, infer.ErrNoPattern) {
		return fmt.Errorf("%w: cannot infer architecture", err)
	}
	if err != nil {
		return err
	}
	writeSummary(stderr, arch)

	header := fmt.Sprintf("# Inferred by \"archcheck infer\" from a %s layout. Review before relying on it.\n", arch.Pattern)
	content, err := infer.Render(cfg, header)
	if err != nil {
		return err
	}
	return writeConfig(dir, string(content), opts.force, !opts.write, stdout, stderr)
}

func writeSummary(w io.Writer, arch *infer.Architecture) {
	_, _ = fmt.Fprintf(w, "Detected pattern: %s\n", arch.Pattern)
	_, _ = fmt.Fprintln(w, "Layers found:")
	for _, l := range arch.Layers {
		purity := ""
		if l.Pure && l.Files > 0 {
			purity = ", pure"
		}
		_, _ = fmt.Fprintf(w, "  %-16s %s (%s, %d files%s)\n", l.Name, l.Path, l.Role, l.Files, purity)
	}
	if len(arch.Dependencies) > 0 {
		_, _ = fmt.Fprintln(w, "Dependencies:")
		for _, e := range arch.Dependencies {
			_, _ = fmt.Fprintf(w, "  %s -> %s (%d imports)\n", e.From, e.To, e.Weight)
		}
	}
	_, _ = fmt.Fprintln(w, "Inferred contracts:")
	for _, p := range arch.NoDependency() {
		_, _ = fmt.Fprintf(w, "  noDependency(%s -> %s)\n", p[0], p[1])
	}
	for _, p := range arch.MustImplement() {
		_, _ = fmt.Fprintf(w, "  mustImplement(%s -> %s)\n", p[0], p[1])
	}
	for _, l := range arch.Layers {
		if l.Pure && l.Files > 0 {
			_, _ = fmt.Fprintf(w, "  pure(%s)\n", l.Name)
		}
	}
}
