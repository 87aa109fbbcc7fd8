package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/archcheck/internal/bind"
	"github.com/phobologic/archcheck/internal/checker"
	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/discover"
	"github.com/phobologic/archcheck/internal/lang"
	"github.com/phobologic/archcheck/internal/locate"
	"github.com/phobologic/archcheck/internal/metrics"
	"github.com/phobologic/archcheck/internal/plugins"
	"github.com/phobologic/archcheck/internal/report"
	"github.com/phobologic/archcheck/internal/source"
)

type checkOptions struct {
	config          string
	format          string
	workers         int
	maxDiagnostics  int
	dedupe          bool
	sort            bool
	clearCache      bool
	failOnViolation bool
	cacheDir        string
	noCache         bool
	metricsFile     string
	watch           bool
	langs           []string
	exclude         []string
	color           bool
}

func newCheckCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check the project against archcheck.yaml (default command)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			colorMode, err := cmd.Flags().GetString("color")
			if err != nil {
				return err
			}
			opts.color = report.UseColor(colorMode, asFile(stdout))
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}
			if opts.clearCache {
				if err := clearCache(opts.cacheDir, stderr); err != nil {
					return err
				}
			}
			if opts.watch {
				return watch(cmd.Context(), newRunner(dir, opts, stdout, stderr, logger))
			}
			res, err := newRunner(dir, opts, stdout, stderr, logger).run(cmd.Context())
			if err != nil {
				return err
			}
			if res.ViolationsFound > 0 && opts.failOnViolation {
				return errViolations
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", envDefault("ARCHCHECK_CONFIG", ""), "architecture file (default: nearest archcheck.yaml, .yml or .toml)")
	f.StringVarP(&opts.format, "format", "f", envDefault("ARCHCHECK_FORMAT", string(report.Text)), "output format (text|json|toon)")
	f.IntVarP(&opts.workers, "workers", "j", envInt("ARCHCHECK_WORKERS", 1), "contracts evaluated concurrently")
	f.IntVar(&opts.maxDiagnostics, "max-diagnostics", 0, "maximum number of diagnostics to print (0 = all)")
	f.BoolVar(&opts.dedupe, "dedupe", false, "drop diagnostics with the same code, location and message")
	f.BoolVar(&opts.failOnViolation, "fail-on-violation", true, "exit with status 2 when violations are found")
	f.StringVar(&opts.cacheDir, "cache-dir", envDefault("ARCHCHECK_CACHE_DIR", ""), "parse cache directory (default: user cache dir)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the on-disk parse cache")
	f.BoolVar(&opts.clearCache, "clear-cache", false, "empty the on-disk parse cache before checking")
	f.BoolVar(&opts.sort, "sort", false, "order diagnostics by file and position instead of by contract")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-run the check when files change")
	f.StringSliceVarP(&opts.langs, "langs", "l", nil, "languages to include (overrides the architecture file)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "extra gitignore-style pattern to exclude (repeatable)")
	return cmd
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

// runner executes the check pipeline. A runner reused across watch
// iterations keeps its parse cache and only re-parses changed files.
type runner struct {
	dir    string
	opts   checkOptions
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	root    string
	project *source.Project
}

func newRunner(dir string, opts checkOptions, stdout, stderr io.Writer, logger *slog.Logger) *runner {
	return &runner{dir: dir, opts: opts, stdout: stdout, stderr: stderr, logger: logger}
}

// run executes the pipeline once: load, discover, bind, locate, check and
// report. changed lists absolute paths modified since the previous run.
func (r *runner) run(ctx context.Context, changed ...string) (checker.Result, error) {
	start := time.Now()
	opts := r.opts
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return checker.Result{}, err
	}

	cfgPath := opts.config
	if cfgPath == "" {
		if cfgPath, err = config.Find(r.dir); err != nil {
			return checker.Result{}, err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return checker.Result{}, err
	}

	root, err := filepath.Abs(cfg.ProjectRoot())
	if err != nil {
		return checker.Result{}, fmt.Errorf("resolving root: %w", err)
	}
	langs := opts.langs
	if len(langs) == 0 {
		langs = cfg.Languages
	}
	for _, name := range langs {
		if _, ok := lang.Languages[name]; !ok {
			return checker.Result{}, fmt.Errorf("unsupported language %q", name)
		}
	}
	exclude := append(append([]string(nil), cfg.Exclude...), opts.exclude...)
	entries, err := discover.Files(root, langs, exclude...)
	if err != nil {
		return checker.Result{}, fmt.Errorf("discovering files: %w", err)
	}
	files := discover.Paths(entries)
	r.logger.Info("discovered files", "root", root, "files", len(files))

	plugs := plugins.Builtins()
	bound := bind.Bind(cfg, plugs)
	if len(bound.Errors) > 0 {
		for _, e := range bound.Errors {
			_, _ = fmt.Fprintf(r.stderr, "archcheck: config: %s\n", e)
		}
		return checker.Result{}, fmt.Errorf("%s: %d binding error(s)", cfgPath, len(bound.Errors))
	}
	r.logger.Debug("bound contracts", "count", len(bound.Contracts), "types", bind.Summary(bound.Contracts))

	fsys := os.DirFS(root)
	loc := locate.Locate(bound.Tree, files, fsys)
	r.logger.Debug("located symbols", "locations", len(loc.ResolvedFiles), "instances", loc.Ownership.Len())

	provider, err := r.provider(fsys, root, files, changed)
	if err != nil {
		return checker.Result{}, err
	}

	var m *metrics.Metrics
	chkOpts := []checker.Option{checker.WithWorkers(opts.workers), checker.WithLogger(r.logger)}
	if opts.metricsFile != "" {
		m = metrics.New()
		chkOpts = append(chkOpts, checker.WithMetrics(m))
	}
	chk, err := checker.New(plugs, chkOpts...)
	if err != nil {
		return checker.Result{}, err
	}

	res, err := chk.Execute(ctx, bound.Contracts, &plugins.Context{
		Tree:           bound.Tree,
		Provider:       provider,
		ResolvedFiles:  loc.ResolvedFiles,
		ContainerFiles: loc.ContainerFiles,
	})
	if err != nil {
		return checker.Result{}, err
	}

	if opts.dedupe || opts.sort {
		bag := diag.NewBag(0)
		for _, d := range res.Diagnostics {
			bag.Add(d)
		}
		if opts.dedupe {
			bag.Dedup()
		}
		if opts.sort {
			bag.Sort()
		}
		res.Diagnostics = bag.Items()
		res.ViolationsFound = len(res.Diagnostics)
	}

	run := report.Run{Project: filepath.Base(root), Config: relTo(root, cfgPath), Result: res}
	err = report.Write(r.stdout, run, report.Options{Format: format, Color: opts.color, Max: opts.maxDiagnostics})
	if err != nil {
		return checker.Result{}, err
	}

	if m != nil {
		m.ObserveRun(len(files), time.Since(start), time.Now())
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			return res, err
		}
	}
	return res, nil
}

// provider returns the source model for files. The previous run's project
// is reused when the root and tsconfig are unchanged, with the changed files
// purged from its cache.
func (r *runner) provider(fsys fs.FS, root string, files, changed []string) (*source.Project, error) {
	if r.project != nil && r.root == root && !touches(changed, source.TSConfigFile) {
		p := r.project.WithFiles(files)
		p.Purge(relativeTo(root, changed)...)
		r.project = p
		return p, nil
	}

	provOpts := []source.Option{source.WithLogger(r.logger)}
	if !r.opts.noCache {
		if dc, err := openDiskCache(r.opts.cacheDir); err != nil {
			_, _ = fmt.Fprintf(r.stderr, "Warning: parse cache disabled: %v\n", err)
		} else {
			provOpts = append(provOpts, source.WithDiskCache(dc))
		}
	}
	p, err := source.NewProjectFS(fsys, files, provOpts...)
	if err != nil {
		return nil, err
	}
	r.root, r.project = root, p
	return p, nil
}

func touches(changed []string, name string) bool {
	for _, c := range changed {
		if filepath.Base(c) == name {
			return true
		}
	}
	return false
}

// relativeTo maps absolute paths to slash paths under root, dropping the
// ones outside it.
func relativeTo(root string, abs []string) []string {
	var out []string
	for _, p := range abs {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func clearCache(dir string, stderr io.Writer) error {
	dc, err := openDiskCache(dir)
	if err != nil {
		return err
	}
	if err := dc.DropAll(); err != nil {
		return fmt.Errorf("clearing parse cache: %w", err)
	}
	_, _ = fmt.Fprintln(stderr, "cleared parse cache")
	return nil
}

func openDiskCache(dir string) (*source.DiskCache, error) {
	if dir == "" {
		d, err := source.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return source.NewDiskCache(dir)
}

func relTo(root, p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
