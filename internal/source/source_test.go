package source

import (
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/archcheck/internal/parse"
	"github.com/phobologic/archcheck/internal/paths"
)

func TestResolveSpecifier(t *testing.T) {
	t.Parallel()
	known := paths.NewSet([]string{
		"src/domain/order.ts",
		"src/domain/index.ts",
		"src/ui/view.tsx",
		"src/legacy/util.js",
		"src/esm/mod.mts",
		"index.ts",
	})
	tests := []struct {
		from, spec string
		want       string
		ok         bool
	}{
		{"src/app.ts", "./domain/order", "src/domain/order.ts", true},
		{"src/app.ts", "./domain/order.ts", "src/domain/order.ts", true},
		{"src/app.ts", "./domain/order.js", "src/domain/order.ts", true},
		{"src/app.ts", "./domain", "src/domain/index.ts", true},
		{"src/domain/order.ts", "../ui/view", "src/ui/view.tsx", true},
		{"src/app.ts", "./legacy/util", "src/legacy/util.js", true},
		{"src/app.ts", "./esm/mod.mjs", "src/esm/mod.mts", true},
		{"src/app.ts", "..", "index.ts", true},
		{"src/app.ts", "react", "", false},
		{"src/app.ts", "node:fs", "", false},
		{"src/app.ts", "./missing", "", false},
		{"src/app.ts", "../../outside", "", false},
	}
	for _, tt := range tests {
		got, ok := resolveSpecifier(tt.from, tt.spec, known)
		if ok != tt.ok || got != tt.want {
			t.Errorf("resolveSpecifier(%q, %q) = %q, %v; want %q, %v", tt.from, tt.spec, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMemoryProvider(t *testing.T) {
	t.Parallel()
	m := NewMemory().
		AddImport("a.ts", "b/x.ts", 3, 0).
		AddSpecifier("a.ts", "fs", 4, 0).
		AddInterface("ports.ts", "Repo").
		AddImplementation("adapter.ts", "Repo")

	require.Len(t, m.Imports("a.ts"), 1)
	assert.Equal(t, ImportEdge{SourceFile: "a.ts", TargetFile: "b/x.ts", Line: 3, Column: 0, Specifier: "b/x.ts"}, m.Imports("a.ts")[0])
	assert.Len(t, m.ImportSpecifiers("a.ts"), 2)
	assert.Equal(t, []string{"Repo"}, m.ExportedInterfaces("ports.ts"))
	assert.True(t, m.Implements("adapter.ts", "Repo"))
	assert.False(t, m.Implements("adapter.ts", "Other"))
	assert.Empty(t, m.Imports("unknown.ts"))
}

func newTestProject(t *testing.T, files map[string]string, opts ...Option) *Project {
	t.Helper()
	fsys := fstest.MapFS{}
	var names []string
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
		names = append(names, name)
	}
	p, err := NewProjectFS(fsys, names, opts...)
	require.NoError(t, err)
	return p
}

func TestProjectImports(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{
		"src/domain/order.ts": "import { Db } from '../infra/db';\nimport * as fs from 'fs';\nexport class Order {}\n",
		"src/infra/db.ts":     "export class Db {}\n",
	})

	edges := p.Imports("src/domain/order.ts")
	require.Len(t, edges, 1)
	assert.Equal(t, "src/infra/db.ts", edges[0].TargetFile)
	assert.Equal(t, 1, edges[0].Line)
	assert.Equal(t, 0, edges[0].Column)

	specs := p.ImportSpecifiers("src/domain/order.ts")
	var modules []string
	for _, s := range specs {
		modules = append(modules, s.Module)
	}
	assert.Equal(t, []string{"../infra/db", "fs"}, modules)
	assert.Equal(t, 2, specs[1].Line)
}

func TestProjectDeclarations(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{
		"ports/repo.ts":   "export interface OrderRepo {}\nexport interface Clock {}\n",
		"adapters/pg.ts":  "import { OrderRepo } from '../ports/repo';\nexport class PgRepo implements OrderRepo {}\n",
		"adapters/bad.ts": "export class ???",
	})

	assert.Equal(t, []string{"OrderRepo", "Clock"}, p.ExportedInterfaces("ports/repo.ts"))
	assert.True(t, p.Implements("adapters/pg.ts", "OrderRepo"))
	assert.False(t, p.Implements("adapters/pg.ts", "Clock"))
	assert.False(t, p.Implements("adapters/bad.ts", "Clock"))
}

func TestProjectUnknownFile(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{"a.ts": "export {}\n"})

	assert.Nil(t, p.Facts("missing.ts"))
	assert.Empty(t, p.Imports("missing.ts"))
	assert.Empty(t, p.ExportedInterfaces("missing.ts"))
	assert.False(t, p.Implements("missing.ts", "X"))
}

func TestProjectMemoizes(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{"a.ts": "import './b';\n", "b.ts": ""})

	first := p.Facts("a.ts")
	require.NotNil(t, first)
	assert.Same(t, first, p.Facts("a.ts"))

	p.Purge("a.ts")
	assert.NotSame(t, first, p.Facts("a.ts"))
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Parallel()
	dc, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)

	key := Key("typescript", []byte("import 'x';"))
	_, ok, err := dc.Get(key)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	want := &parse.Facts{
		Path:       "a.ts",
		Imports:    []parse.Import{{Specifier: "x", Line: 1}},
		Interfaces: []string{"Repo"},
		Classes:    []parse.Class{{Name: "Pg", Implements: []string{"Repo"}, Exported: true}},
	}
	require.NoError(t, dc.Put(key, want))

	got, ok, err := dc.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	require.NoError(t, dc.DropAll())
	_, ok, err = dc.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjectUsesDiskCache(t *testing.T) {
	t.Parallel()
	dc, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)

	files := map[string]string{"a.ts": "import './b';\n", "b.ts": ""}
	first := newTestProject(t, files, WithDiskCache(dc))
	require.NotNil(t, first.Facts("a.ts"))

	_, ok, err := dc.Get(Key("typescript", []byte(files["a.ts"])))
	require.NoError(t, err)
	assert.True(t, ok, "parse should be persisted")

	second := newTestProject(t, files, WithDiskCache(dc))
	edges := second.Imports("a.ts")
	require.Len(t, edges, 1)
	assert.Equal(t, "b.ts", edges[0].TargetFile)
}

func TestKeyDependsOnLanguage(t *testing.T) {
	t.Parallel()
	content := []byte("export {}")
	assert.NotEqual(t, Key("typescript", content), Key("tsx", content))
	assert.Equal(t, Key("tsx", content), Key("tsx", content))
}

func TestProjectTSConfigAliases(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{
		"tsconfig.json": `{
  // path aliases
  "compilerOptions": {
    "baseUrl": ".",
    "paths": {
      "@/*": ["src/*"],
      "@db": ["src/infra/db.ts"], /* exact alias */
    },
  },
}`,
		"src/domain/order.ts": "import { Db } from '@/infra/db';\nimport { x } from '@db';\nimport { y } from 'shared/util';\nimport React from 'react';\n",
		"src/infra/db.ts":     "export class Db {}\n",
		"shared/util.ts":      "export const y = 1;\n",
	})

	edges := p.Imports("src/domain/order.ts")
	var targets []string
	for _, e := range edges {
		targets = append(targets, e.TargetFile)
	}
	assert.Equal(t, []string{"src/infra/db.ts", "src/infra/db.ts", "shared/util.ts"}, targets)
	assert.Equal(t, "@/infra/db", edges[0].Specifier)
}

func TestAliasResolve(t *testing.T) {
	t.Parallel()
	known := paths.NewSet([]string{"app/lib/a.ts", "app/lib/b/index.ts", "vendor/c.ts"})
	al, err := parseAliases([]byte(`{"compilerOptions": {"baseUrl": "app", "paths": {
		"~lib/*": ["missing/*", "lib/*"],
		"~lib/b": ["lib/b"],
		"*": ["*", "../vendor/*"]
	}}}`))
	require.NoError(t, err)

	tests := []struct {
		spec string
		want string
		ok   bool
	}{
		{"~lib/a", "app/lib/a.ts", true},
		{"~lib/b", "app/lib/b/index.ts", true},
		{"c", "vendor/c.ts", true},
		{"lib/a", "app/lib/a.ts", true},
		{"nothing", "", false},
	}
	for _, tt := range tests {
		got, ok := al.resolve(tt.spec, known)
		assert.Equal(t, tt.ok, ok, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}

	none, err := parseAliases([]byte(`{"compilerOptions": {"strict": true}}`))
	require.NoError(t, err)
	assert.Nil(t, none)
	_, ok := none.resolve("x", known)
	assert.False(t, ok)
}

func TestProjectWithoutTSConfigIgnoresBareImports(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{
		"src/a.ts": "import { b } from 'src/b';\n",
		"src/b.ts": "export const b = 1;\n",
	})
	assert.Empty(t, p.Imports("src/a.ts"))
}

func TestProjectMemoizesFailedLoads(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{"a.ts": &fstest.MapFile{Data: []byte("export {}\n")}}
	p, err := NewProjectFS(fsys, []string{"a.ts", "ghost.ts"})
	require.NoError(t, err)

	assert.Nil(t, p.Facts("ghost.ts"))
	cached, ok := p.cache.Get("ghost.ts")
	require.True(t, ok, "failed load should be cached")
	assert.Same(t, unparseable, cached)
	assert.Nil(t, p.Facts("ghost.ts"))
	assert.Empty(t, p.Imports("ghost.ts"))

	p.Purge("ghost.ts")
	_, ok = p.cache.Get("ghost.ts")
	assert.False(t, ok)
}

func TestProjectWithFilesSharesCache(t *testing.T) {
	t.Parallel()
	p := newTestProject(t, map[string]string{"a.ts": "import './b';\n", "b.ts": ""})
	first := p.Facts("a.ts")
	require.NotNil(t, first)

	narrowed := p.WithFiles([]string{"a.ts"})
	assert.Same(t, first, narrowed.Facts("a.ts"))
	assert.Empty(t, narrowed.Imports("a.ts"), "b.ts is no longer a project file")
	assert.Nil(t, narrowed.Facts("b.ts"))
}
