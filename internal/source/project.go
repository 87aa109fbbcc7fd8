package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/phobologic/archcheck/internal/lang"
	"github.com/phobologic/archcheck/internal/parse"
	"github.com/phobologic/archcheck/internal/paths"
)

// DefaultCacheSize is the number of parsed files kept in memory.
const DefaultCacheSize = 4096

// Project is a Provider that parses project files with tree-sitter on
// demand. Parses are memoized in memory and optionally on disk.
type Project struct {
	fsys    fs.FS
	known   paths.Set
	aliases *aliases
	cache   *lru.Cache[string, *parse.Facts]
	group   singleflight.Group
	disk    *DiskCache
	logger  *slog.Logger
}

// unparseable is cached for files that failed to load so they are not
// read again on every query.
var unparseable = &parse.Facts{}

// Option configures a Project.
type Option func(*projectConfig)

type projectConfig struct {
	cacheSize int
	disk      *DiskCache
	logger    *slog.Logger
}

// WithCacheSize sets the in-memory parse cache size.
func WithCacheSize(n int) Option {
	return func(c *projectConfig) { c.cacheSize = n }
}

// WithDiskCache persists parse results across runs.
func WithDiskCache(d *DiskCache) Option {
	return func(c *projectConfig) { c.disk = d }
}

// WithLogger sets the logger used for parse failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *projectConfig) { c.logger = l }
}

// NewProject returns a provider over files (slash paths relative to root).
// Only these files are parsed and only these are import targets.
func NewProject(root string, files []string, opts ...Option) (*Project, error) {
	return NewProjectFS(os.DirFS(root), files, opts...)
}

// NewProjectFS is NewProject over an arbitrary file system. Non-relative
// imports resolve through the baseUrl and paths of tsconfig.json at the
// root of fsys, when present.
func NewProjectFS(fsys fs.FS, files []string, opts ...Option) (*Project, error) {
	cfg := projectConfig{cacheSize: DefaultCacheSize, logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	cache, err := lru.New[string, *parse.Facts](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	al, err := loadAliases(fsys)
	if err != nil {
		cfg.logger.Warn("ignoring tsconfig path aliases", slog.String("error", err.Error()))
	}
	return &Project{
		fsys:    fsys,
		known:   paths.NewSet(files),
		aliases: al,
		cache:   cache,
		disk:    cfg.disk,
		logger:  cfg.logger,
	}, nil
}

// WithFiles returns a project over a new file list that shares p's parse
// caches and tsconfig aliases.
func (p *Project) WithFiles(files []string) *Project {
	return &Project{
		fsys:    p.fsys,
		known:   paths.NewSet(files),
		aliases: p.aliases,
		cache:   p.cache,
		disk:    p.disk,
		logger:  p.logger,
	}
}

// Facts returns the parse facts for file, or nil if the file is not part of
// the project or cannot be parsed.
func (p *Project) Facts(file string) *parse.Facts {
	if !p.known.Has(file) {
		return nil
	}
	if f, ok := p.cache.Get(file); ok {
		if f == unparseable {
			return nil
		}
		return f
	}
	v, _, _ := p.group.Do(file, func() (any, error) {
		f, err := p.load(file)
		if err != nil {
			p.logger.Debug("skipping unparseable file",
				slog.String("file", file),
				slog.String("error", err.Error()))
			p.cache.Add(file, unparseable)
			return (*parse.Facts)(nil), nil
		}
		if f.HasErrors {
			p.logger.Debug("file has syntax errors; facts may be partial", slog.String("file", file))
		}
		p.cache.Add(file, f)
		return f, nil
	})
	return v.(*parse.Facts)
}

func (p *Project) load(file string) (*parse.Facts, error) {
	l := lang.ForFile(path.Ext(file))
	if l == nil {
		return nil, fmt.Errorf("no grammar for %s", file)
	}
	content, err := fs.ReadFile(p.fsys, file)
	if err != nil {
		return nil, err
	}

	key := Key(l.Name, content)
	if cached, ok, err := p.disk.Get(key); err != nil {
		p.logger.Debug("parse cache read failed", slog.String("file", file), slog.String("error", err.Error()))
	} else if ok {
		out := *cached
		out.Path = file
		return &out, nil
	}

	facts, err := parse.Extract(context.Background(), l, content, file)
	if err != nil {
		return nil, err
	}
	if err := p.disk.Put(key, facts); err != nil {
		p.logger.Debug("parse cache write failed", slog.String("file", file), slog.String("error", err.Error()))
	}
	return facts, nil
}

func (p *Project) Imports(file string) []ImportEdge {
	f := p.Facts(file)
	if f == nil {
		return nil
	}
	var edges []ImportEdge
	for _, imp := range f.Imports {
		target, ok := p.resolve(file, imp.Specifier)
		if !ok {
			continue
		}
		edges = append(edges, ImportEdge{
			SourceFile: file,
			TargetFile: target,
			Line:       imp.Line,
			Column:     imp.Column,
			Specifier:  imp.Specifier,
		})
	}
	return edges
}

func (p *Project) resolve(from, spec string) (string, bool) {
	if isRelative(spec) {
		return resolveSpecifier(from, spec, p.known)
	}
	return p.aliases.resolve(spec, p.known)
}

func (p *Project) ImportSpecifiers(file string) []Specifier {
	f := p.Facts(file)
	if f == nil {
		return nil
	}
	specs := make([]Specifier, len(f.Imports))
	for i, imp := range f.Imports {
		specs[i] = Specifier{Module: imp.Specifier, Line: imp.Line, Column: imp.Column}
	}
	return specs
}

func (p *Project) ExportedInterfaces(file string) []string {
	if f := p.Facts(file); f != nil {
		return f.Interfaces
	}
	return nil
}

func (p *Project) Implements(file, iface string) bool {
	if f := p.Facts(file); f != nil {
		return f.ImplementsInterface(iface)
	}
	return false
}

// Purge drops the in-memory facts for files after they change on disk.
func (p *Project) Purge(files ...string) {
	for _, f := range files {
		p.cache.Remove(f)
	}
}
