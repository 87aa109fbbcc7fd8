// Package infer detects a clean, hexagonal or layered directory layout in a
// project and derives a starter architecture file from it.
package infer

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/discover"
	"github.com/phobologic/archcheck/internal/plugins"
	"github.com/phobologic/archcheck/internal/source"
)

// Errors returned by Config when there is nothing to declare.
var (
	ErrNoLayers  = errors.New("no architectural layers detected")
	ErrNoPattern = errors.New("no recognized architectural pattern detected")
)

// Role is the architectural role a directory name implies.
type Role string

const (
	Domain         Role = "domain"
	Application    Role = "application"
	Infrastructure Role = "infrastructure"
	Ports          Role = "ports"
	Adapters       Role = "adapters"
	Presentation   Role = "presentation"
)

var roleNames = map[string]Role{
	"domain":         Domain,
	"core":           Domain,
	"entities":       Domain,
	"model":          Domain,
	"application":    Application,
	"use-cases":      Application,
	"usecases":       Application,
	"app":            Application,
	"infrastructure": Infrastructure,
	"infra":          Infrastructure,
	"ports":          Ports,
	"adapters":       Adapters,
	"presentation":   Presentation,
	"ui":             Presentation,
	"web":            Presentation,
	"api":            Presentation,
}

// RoleOf returns the role implied by a directory name.
func RoleOf(dir string) (Role, bool) {
	r, ok := roleNames[strings.ToLower(dir)]
	return r, ok
}

// Pattern is a recognized overall layout.
type Pattern string

const (
	Clean     Pattern = "clean"
	Hexagonal Pattern = "hexagonal"
	Layered   Pattern = "layered"
	Unknown   Pattern = "unknown"
)

// KindName is the kind a pattern is declared as in the generated file.
func (p Pattern) KindName() string {
	switch p {
	case Clean:
		return "CleanArchitecture"
	case Hexagonal:
		return "Hexagonal"
	case Layered:
		return "Layered"
	}
	return "Unknown"
}

// Layer is a directory below the source directory with a known role.
type Layer struct {
	Name  string // directory name
	Path  string // slash path relative to the project root
	Role  Role
	Files int
	// Pure is false when any file imports a host I/O module.
	Pure  bool
}

// Edge counts imports from one layer into another.
type Edge struct {
	From, To string
	Weight   int
}

// Architecture is what Detect found.
type Architecture struct {
	SrcDir       string
	Pattern      Pattern
	Layers       []Layer
	Dependencies []Edge
	Warnings     []string
}

// Options configures Detect.
type Options struct {
	// SrcDir is the source directory relative to the root. When empty,
	// src, lib and the root itself are tried in that order.
	SrcDir    string
	Languages []string
	Exclude   []string
	Logger    *slog.Logger
}

// Detect inspects the directory layout and imports under root.
func Detect(root string, opts Options) (*Architecture, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	arch := &Architecture{Pattern: Unknown}

	src, err := findSrcDir(root, opts.SrcDir)
	if err != nil {
		return nil, err
	}
	if src == "" {
		arch.Warnings = append(arch.Warnings, "no source directory found (checked src/, lib/, project root)")
		return arch, nil
	}
	arch.SrcDir = src

	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(src)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		role, ok := RoleOf(e.Name())
		if !ok {
			continue
		}
		arch.Layers = append(arch.Layers, Layer{Name: e.Name(), Path: joinSlash(src, e.Name()), Role: role, Pure: true})
	}
	if len(arch.Layers) == 0 {
		arch.Warnings = append(arch.Warnings, "no architectural layers detected in "+src)
		return arch, nil
	}

	found, err := discover.Files(root, opts.Languages, opts.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	files := discover.Paths(found)
	project, err := source.NewProject(root, files, source.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	arch.Dependencies = analyzeImports(arch.Layers, files, project)
	arch.Pattern = matchPattern(arch.Layers, arch.Dependencies)
	opts.Logger.Debug("detected architecture",
		slog.String("src", src),
		slog.String("pattern", string(arch.Pattern)),
		slog.Int("layers", len(arch.Layers)),
		slog.Int("edges", len(arch.Dependencies)))
	return arch, nil
}

func findSrcDir(root, explicit string) (string, error) {
	if explicit != "" {
		rel := filepath.ToSlash(filepath.Clean(explicit))
		if !isDir(filepath.Join(root, filepath.FromSlash(rel))) {
			return "", fmt.Errorf("source directory %s not found", explicit)
		}
		return rel, nil
	}
	for _, candidate := range []string{"src", "lib"} {
		if isDir(filepath.Join(root, candidate)) {
			return candidate, nil
		}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			return ".", nil
		}
	}
	return "", nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func joinSlash(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// layerOf returns the index of the layer containing file, or -1.
func layerOf(layers []Layer, file string) int {
	for i, l := range layers {
		if strings.HasPrefix(file, l.Path+"/") {
			return i
		}
	}
	return -1
}

func analyzeImports(layers []Layer, files []string, p *source.Project) []Edge {
	counts := make(map[[2]int]int)
	for _, f := range files {
		from := layerOf(layers, f)
		if from < 0 {
			continue
		}
		layers[from].Files++
		for _, spec := range p.ImportSpecifiers(f) {
			if plugins.IsHostModule(spec.Module) {
				layers[from].Pure = false
			}
		}
		for _, e := range p.Imports(f) {
			to := layerOf(layers, e.TargetFile)
			if to < 0 || to == from {
				continue
			}
			counts[[2]int{from, to}]++
		}
	}
	edges := make([]Edge, 0, len(counts))
	for k, n := range counts {
		edges = append(edges, Edge{From: layers[k[0]].Name, To: layers[k[1]].Name, Weight: n})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func matchPattern(layers []Layer, deps []Edge) Pattern {
	byRole := make(map[Role]string, len(layers))
	for _, l := range layers {
		if _, ok := byRole[l.Role]; !ok {
			byRole[l.Role] = l.Name
		}
	}
	domain, hasDomain := byRole[Domain]
	_, hasApp := byRole[Application]
	_, hasInfra := byRole[Infrastructure]
	if hasDomain && hasApp && hasInfra && outward(deps, domain) == 0 {
		return Clean
	}
	_, hasPorts := byRole[Ports]
	_, hasAdapters := byRole[Adapters]
	if hasDomain && hasPorts && hasAdapters {
		return Hexagonal
	}
	if len(layers) >= 2 && len(deps) > 0 {
		return Layered
	}
	return Unknown
}

func outward(deps []Edge, layer string) int {
	n := 0
	for _, e := range deps {
		if e.From == layer {
			n++
		}
	}
	return n
}

func (a *Architecture) layer(r Role) (Layer, bool) {
	for _, l := range a.Layers {
		if l.Role == r {
			return l, true
		}
	}
	return Layer{}, false
}

func (a *Architecture) depends(from, to string) bool {
	for _, e := range a.Dependencies {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// NoDependency returns the forbidden dependencies the layout implies and
// the current imports do not already violate.
func (a *Architecture) NoDependency() [][2]string {
	var pairs [][2]string
	switch a.Pattern {
	case Clean:
		domain, _ := a.layer(Domain)
		for _, l := range a.Layers {
			if l.Name != domain.Name && !a.depends(domain.Name, l.Name) {
				pairs = append(pairs, [2]string{domain.Name, l.Name})
			}
		}
		app, _ := a.layer(Application)
		infra, _ := a.layer(Infrastructure)
		if !a.depends(app.Name, infra.Name) {
			pairs = append(pairs, [2]string{app.Name, infra.Name})
		}
	case Hexagonal:
		domain, _ := a.layer(Domain)
		adapters, _ := a.layer(Adapters)
		if !a.depends(domain.Name, adapters.Name) {
			pairs = append(pairs, [2]string{domain.Name, adapters.Name})
		}
	case Layered:
		for _, from := range a.Layers {
			if outward(a.Dependencies, from.Name) > 0 {
				continue
			}
			for _, to := range a.Layers {
				if from.Name != to.Name && !a.depends(from.Name, to.Name) {
					pairs = append(pairs, [2]string{from.Name, to.Name})
				}
			}
		}
	}
	return pairs
}

// MustImplement returns [ports, adapters] for hexagonal layouts.
func (a *Architecture) MustImplement() [][2]string {
	if a.Pattern != Hexagonal {
		return nil
	}
	ports, _ := a.layer(Ports)
	adapters, _ := a.layer(Adapters)
	return [][2]string{{ports.Name, adapters.Name}}
}

// Config builds an architecture file declaring one instance of the
// detected pattern at the source directory.
func (a *Architecture) Config(instance string, languages []string) (*config.Config, error) {
	if len(a.Layers) == 0 {
		return nil, ErrNoLayers
	}
	if a.Pattern == Unknown {
		return nil, ErrNoPattern
	}
	kind := config.Kind{Constraints: map[string]any{}}
	for _, l := range a.Layers {
		kind.Members = append(kind.Members, config.Member{Name: l.Name, Pure: l.Pure && l.Files > 0})
	}
	if pairs := a.NoDependency(); len(pairs) > 0 {
		kind.Constraints["noDependency"] = flowPairs(pairs)
	}
	if pairs := a.MustImplement(); len(pairs) > 0 {
		kind.Constraints["mustImplement"] = flowPairs(pairs)
	}
	if len(kind.Constraints) == 0 {
		kind.Constraints = nil
	}
	return &config.Config{
		Languages: languages,
		Kinds:     map[string]config.Kind{a.Pattern.KindName(): kind},
		Instances: []config.Instance{{Name: instance, Kind: a.Pattern.KindName(), Path: a.SrcDir}},
	}, nil
}

// pair encodes as a flow sequence: [domain, infrastructure].
type pair [2]string

func (p pair) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: p[0]},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: p[1]},
		},
	}, nil
}

func flowPairs(in [][2]string) []pair {
	out := make([]pair, len(in))
	for i, p := range in {
		out[i] = pair(p)
	}
	return out
}

// Render encodes cfg as YAML below header and validates the result.
func Render(cfg *config.Config, header string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if _, err := config.Parse(buf.Bytes(), "yaml"); err != nil {
		return nil, fmt.Errorf("inferred config: %w", err)
	}
	return buf.Bytes(), nil
}
