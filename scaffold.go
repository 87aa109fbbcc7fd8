package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/archcheck/internal/bind"
	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/paths"
	"github.com/phobologic/archcheck/internal/plugins"
)

type scaffoldOptions struct {
	config   string
	instance string
	write    bool
}

func newScaffoldCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := scaffoldOptions{}
	cmd := &cobra.Command{
		Use:   "scaffold [dir]",
		Short: "Create the directories an instance declares",
		Long: `Plan the directories for an instance and every member below it, as declared
in archcheck.yaml. Directories that already exist are left alone. Nothing is
created unless --write is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runScaffold(dir, opts, stdout, stderr)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", envDefault("ARCHCHECK_CONFIG", ""), "architecture file (default: nearest archcheck.yaml, .yml or .toml)")
	f.StringVar(&opts.instance, "instance", "", "instance to scaffold (required when the file declares several)")
	f.BoolVar(&opts.write, "write", false, "create the planned directories")
	return cmd
}

func runScaffold(dir string, opts scaffoldOptions, stdout, stderr io.Writer) error {
	cfgPath := opts.config
	if cfgPath == "" {
		var err error
		if cfgPath, err = config.Find(dir); err != nil {
			return err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	bound := bind.Bind(cfg, plugins.Builtins())
	if len(bound.Errors) > 0 {
		for _, e := range bound.Errors {
			_, _ = fmt.Fprintf(stderr, "archcheck: config: %s\n", e)
		}
		return fmt.Errorf("%s: %d binding error(s)", cfgPath, len(bound.Errors))
	}
	inst, err := pickInstance(bound, opts.instance)
	if err != nil {
		return err
	}

	root := cfg.ProjectRoot()
	var missing, existing []string
	for _, loc := range scaffoldDirs(bound.Tree, inst) {
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(loc))); err == nil && info.IsDir() {
			existing = append(existing, loc)
			continue
		}
		missing = append(missing, loc)
	}

	_, _ = fmt.Fprintf(stdout, "Scaffold plan for '%s':\n", bound.Tree.Name(inst))
	for _, loc := range missing {
		_, _ = fmt.Fprintf(stdout, "  createDirectory %s\n", loc)
	}
	_, _ = fmt.Fprintf(stdout, "%d directories to create, %d already exist\n", len(missing), len(existing))

	if !opts.write {
		if len(missing) > 0 {
			_, _ = fmt.Fprintln(stdout, "Dry run complete. Use --write to create them.")
		}
		return nil
	}
	for _, loc := range missing {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(loc)), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", loc, err)
		}
		_, _ = fmt.Fprintf(stdout, "  created %s\n", loc)
	}
	if len(missing) > 0 {
		_, _ = fmt.Fprintln(stdout, "Next: add source files, then run \"archcheck\" to check them.")
	}
	return nil
}

func pickInstance(bound *bind.Result, name string) (model.SymbolID, error) {
	names := make([]string, len(bound.Instances))
	for i, id := range bound.Instances {
		names[i] = bound.Tree.Name(id)
		if name != "" && names[i] == name {
			return id, nil
		}
	}
	switch {
	case name != "":
		return model.NoSymbol, fmt.Errorf("instance %q not found; available: %s", name, strings.Join(names, ", "))
	case len(names) == 1:
		return bound.Instances[0], nil
	}
	return model.NoSymbol, fmt.Errorf("%d instances declared; pick one with --instance: %s", len(names), strings.Join(names, ", "))
}

// scaffoldDirs returns the directory locations of inst and its members,
// sorted and without duplicates. File locations are skipped.
func scaffoldDirs(tree *model.Tree, inst model.SymbolID) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range append([]model.SymbolID{inst}, tree.Descendants(inst)...) {
		loc := tree.Symbol(id).DeclaredLocation
		if loc == "" || paths.HasSourceSuffix(loc) {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}
