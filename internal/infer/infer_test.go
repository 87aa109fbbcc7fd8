package infer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/archcheck/internal/bind"
	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/plugins"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestDetectClean(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/domain/order.ts":         "export interface Order { id: string }\n",
		"src/application/place.ts":    "import { Order } from '../domain/order';\nexport function place(o: Order) {}\n",
		"src/infrastructure/db.ts":    "import { readFileSync } from 'fs';\nimport { Order } from '../domain/order';\nexport const load = (): Order => JSON.parse(readFileSync('x', 'utf8'));\n",
		"src/infrastructure/cache.ts": "import { load } from './db';\nexport const cached = load;\n",
		"src/shared/util.ts":          "export const id = (x: string) => x;\n",
	})

	arch, err := Detect(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, "src", arch.SrcDir)
	assert.Equal(t, Clean, arch.Pattern)
	require.Len(t, arch.Layers, 3)
	assert.Equal(t, "application", arch.Layers[0].Name)
	assert.Equal(t, "src/domain", arch.Layers[1].Path)
	assert.Equal(t, Infrastructure, arch.Layers[2].Role)
	assert.Equal(t, 2, arch.Layers[2].Files)
	assert.True(t, arch.Layers[1].Pure)
	assert.False(t, arch.Layers[2].Pure)

	assert.Equal(t, []Edge{
		{From: "application", To: "domain", Weight: 1},
		{From: "infrastructure", To: "domain", Weight: 1},
	}, arch.Dependencies)
	assert.Equal(t, [][2]string{
		{"domain", "application"},
		{"domain", "infrastructure"},
		{"application", "infrastructure"},
	}, arch.NoDependency())
	assert.Empty(t, arch.MustImplement())
}

func TestDetectHexagonal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/core/order.ts":       "export interface Order { id: string }\n",
		"src/ports/repo.ts":       "import { Order } from '../core/order';\nexport interface Repo { save(o: Order): void }\n",
		"src/adapters/memory.ts":  "import { Repo } from '../ports/repo';\nexport class Memory implements Repo { save() {} }\n",
		"src/adapters/console.ts": "import { Order } from '../core/order';\nexport const show = (o: Order) => o.id;\n",
	})

	arch, err := Detect(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Hexagonal, arch.Pattern)
	assert.Equal(t, [][2]string{{"core", "adapters"}}, arch.NoDependency())
	assert.Equal(t, [][2]string{{"ports", "adapters"}}, arch.MustImplement())
}

func TestDetectLayered(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"lib/model/user.ts": "export interface User { name: string }\n",
		"lib/ui/view.ts":    "import { User } from '../model/user';\nexport const render = (u: User) => u.name;\n",
	})

	arch, err := Detect(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, "lib", arch.SrcDir)
	assert.Equal(t, Layered, arch.Pattern)
	assert.Equal(t, [][2]string{{"model", "ui"}}, arch.NoDependency())
}

func TestDetectExplicitSrcDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/other/a.ts":           "export const a = 1;\n",
		"packages/app/domain/x.ts": "export const x = 1;\n",
	})

	arch, err := Detect(root, Options{SrcDir: "packages/app"})
	require.NoError(t, err)
	assert.Equal(t, "packages/app", arch.SrcDir)
	require.Len(t, arch.Layers, 1)
	assert.Equal(t, "packages/app/domain", arch.Layers[0].Path)

	_, err = Detect(root, Options{SrcDir: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source directory missing not found")
}

func TestDetectNothing(t *testing.T) {
	t.Parallel()

	t.Run("no layers", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"src/misc/a.ts": "export const a = 1;\n"})
		arch, err := Detect(root, Options{})
		require.NoError(t, err)
		assert.Empty(t, arch.Layers)
		assert.Equal(t, []string{"no architectural layers detected in src"}, arch.Warnings)
		_, err = arch.Config("app", nil)
		assert.ErrorIs(t, err, ErrNoLayers)
	})

	t.Run("single layer", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"src/domain/a.ts": "export const a = 1;\n"})
		arch, err := Detect(root, Options{})
		require.NoError(t, err)
		assert.Equal(t, Unknown, arch.Pattern)
		_, err = arch.Config("app", nil)
		assert.ErrorIs(t, err, ErrNoPattern)
	})

	t.Run("empty root", func(t *testing.T) {
		t.Parallel()
		arch, err := Detect(t.TempDir(), Options{})
		require.NoError(t, err)
		assert.Empty(t, arch.SrcDir)
		assert.Len(t, arch.Warnings, 1)
	})
}

func TestRoleOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dir  string
		want Role
		ok   bool
	}{
		{"domain", Domain, true},
		{"Entities", Domain, true},
		{"use-cases", Application, true},
		{"infra", Infrastructure, true},
		{"web", Presentation, true},
		{"helpers", "", false},
	}
	for _, tt := range tests {
		got, ok := RoleOf(tt.dir)
		assert.Equal(t, tt.ok, ok, tt.dir)
		assert.Equal(t, tt.want, got, tt.dir)
	}
}

func TestConfigRendersAndBinds(t *testing.T) {
	t.Parallel()
	arch := &Architecture{
		SrcDir:  "src",
		Pattern: Hexagonal,
		Layers: []Layer{
			{Name: "adapters", Path: "src/adapters", Role: Adapters, Files: 1},
			{Name: "domain", Path: "src/domain", Role: Domain, Files: 2, Pure: true},
			{Name: "ports", Path: "src/ports", Role: Ports, Files: 1, Pure: true},
		},
	}
	cfg, err := arch.Config("shop", []string{"typescript"})
	require.NoError(t, err)

	data, err := Render(cfg, "# inferred\n")
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# inferred\n")
	assert.Contains(t, out, "[domain, adapters]")
	assert.Contains(t, out, "[ports, adapters]")

	parsed, err := config.Parse(data, "yaml")
	require.NoError(t, err)
	require.Len(t, parsed.Instances, 1)
	assert.Equal(t, "shop", parsed.Instances[0].Name)
	assert.Equal(t, "Hexagonal", parsed.Instances[0].Kind)
	assert.Equal(t, "src", parsed.Instances[0].Path)
	members := parsed.Kinds["Hexagonal"].Members
	require.Len(t, members, 3)
	assert.False(t, members[0].Pure)
	assert.True(t, members[1].Pure)

	res := bind.Bind(parsed, plugins.Builtins())
	assert.Empty(t, res.Errors)
	assert.NotEmpty(t, res.Contracts)
}
