package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
root: .
languages: [typescript, tsx]
exclude: ["**/generated/**"]
kinds:
  BoundedContext:
    scope: folder
    members:
      - name: domain
        kind: Layer
        pure: true
      - name: infrastructure
        path: infra
    constraints:
      noDependency:
        - [domain, infrastructure]
      exhaustive: true
      filesystem:
        exists: [domain]
  Layer: {}
instances:
  - name: ordering
    kind: BoundedContext
    path: src/ordering
`

const sampleTOML = `
languages = ["typescript"]

[kinds.BoundedContext]
scope = "folder"

[[kinds.BoundedContext.members]]
name = "domain"

[[kinds.BoundedContext.members]]
name = "infrastructure"

[kinds.BoundedContext.constraints]
noDependency = [["domain", "infrastructure"]]

[[instances]]
name = "ordering"
kind = "BoundedContext"
path = "src/ordering"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(sampleYAML), "yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"typescript", "tsx"}, cfg.Languages)
	require.Contains(t, cfg.Kinds, "BoundedContext")
	k := cfg.Kinds["BoundedContext"]
	assert.Equal(t, "folder", k.Scope)
	require.Len(t, k.Members, 2)
	assert.True(t, k.Members[0].Pure)
	assert.Equal(t, "infra", k.Members[1].Path)
	assert.Equal(t, true, k.Constraints["exhaustive"])
	assert.IsType(t, map[string]any{}, k.Constraints["filesystem"])
	require.Len(t, cfg.Instances, 1)
	assert.Equal(t, "src/ordering", cfg.Instances[0].Path)
}

func TestParseTOML(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(sampleTOML), "toml")
	require.NoError(t, err)

	k := cfg.Kinds["BoundedContext"]
	require.Len(t, k.Members, 2)
	pairs, ok := k.Constraints["noDependency"].([]any)
	require.True(t, ok, "got %T", k.Constraints["noDependency"])
	require.Len(t, pairs, 1)
	assert.Equal(t, []any{"domain", "infrastructure"}, pairs[0])
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "kinds: {K: {}}\ninstances: [{name: a, kind: K, path: src}]\nbogus: 1\n",
			want:    "field bogus not found",
		},
		{
			name:    "no instances",
			content: "kinds: {K: {}}\n",
			want:    "Config.Instances",
		},
		{
			name:    "unknown kind",
			content: "kinds: {K: {}}\ninstances: [{name: a, kind: Missing, path: src}]\n",
			want:    `instance "a": unknown kind "Missing"`,
		},
		{
			name:    "duplicate instance",
			content: "kinds: {K: {}}\ninstances: [{name: a, kind: K, path: src}, {name: a, kind: K, path: lib}]\n",
			want:    `duplicate instance "a"`,
		},
		{
			name:    "escaping path",
			content: "kinds: {K: {}}\ninstances: [{name: a, kind: K, path: ../src}]\n",
			want:    "relpath",
		},
		{
			name:    "bad scope",
			content: "kinds: {K: {scope: module}}\ninstances: [{name: a, kind: K, path: src}]\n",
			want:    "oneof",
		},
		{
			name:    "duplicate member",
			content: "kinds: {K: {members: [{name: d}, {name: d}]}}\ninstances: [{name: a, kind: K, path: src}]\n",
			want:    `kind K: duplicate member "d"`,
		},
		{
			name:    "unknown member kind",
			content: "kinds: {K: {members: [{name: d, kind: Nope}]}}\ninstances: [{name: a, kind: K, path: src}]\n",
			want:    `member "d" has unknown kind "Nope"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.content), "yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Parse([]byte("bogus = 1\n"), "toml")
	assert.ErrorContains(t, err, "unknown field")
	_, err = Parse(nil, "json")
	assert.ErrorContains(t, err, "unknown config format")
}

func TestLoadAndFind(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "archcheck.toml", sampleTOML)
	nested := filepath.Join(dir, "src", "ordering")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, p, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.Path())
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, dir, cfg.ProjectRoot())

	writeFile(t, dir, "archcheck.yaml", sampleYAML)
	found, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, "archcheck.yaml", filepath.Base(found), "yaml takes precedence")
}

func TestFindMissing(t *testing.T) {
	t.Parallel()
	_, err := Find(t.TempDir())
	if err == nil {
		t.Skip("an archcheck file exists above the temp directory")
	}
	assert.True(t, errors.Is(err, ErrNoConfig))
}

func TestLoadReportsPath(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "broken.yaml", "kinds: [\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}

func TestProjectRoot(t *testing.T) {
	t.Parallel()
	cfg := &Config{Root: "web", path: filepath.Join("repo", "archcheck.yaml")}
	assert.Equal(t, filepath.Join("repo", "web"), cfg.ProjectRoot())
	assert.Equal(t, ".", (&Config{}).Dir())
}

func TestSchema(t *testing.T) {
	t.Parallel()
	data, err := Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "archcheck architecture file", doc["title"])
	assert.Contains(t, string(data), `"instances"`)
	assert.Contains(t, string(data), `"folder"`)
}
