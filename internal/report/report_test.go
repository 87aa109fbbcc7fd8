package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/archcheck/internal/checker"
	"github.com/phobologic/archcheck/internal/diag"
	"github.com/phobologic/archcheck/internal/model"
	"github.com/phobologic/archcheck/internal/plugins"
)

func sampleRun() Run {
	c := model.Contract{Type: model.NoDependency, Name: "noDependency(domain -> infrastructure)", Location: "type:BoundedContext"}
	return Run{
		Project: "shop",
		Config:  "archcheck.yaml",
		Result: checker.Result{
			Diagnostics: []diag.Diagnostic{
				diag.New(diag.ForbiddenDependency, diag.FileRef{File: "src/domain/order.ts", Line: 3, Column: 0}, "Forbidden dependency: domain → infrastructure").WithContract(c),
				diag.New(diag.UnassignedFile, diag.StructuralRef{Scope: "ordering"}, `Unassigned file: "src/ordering/x.ts" is not in any member of ordering`),
			},
			ContractsChecked: 5,
			ViolationsFound:  2,
			FilesAnalyzed:    9,
		},
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: Text}))

	want := strings.Join([]string{
		"src/domain/order.ts:3:0 - error KS70001: Forbidden dependency: domain → infrastructure [noDependency(domain -> infrastructure)]",
		`ordering - error KS70007: Unassigned file: "src/ordering/x.ts" is not in any member of ordering`,
		"",
		"5 contracts checked, 2 violations, 9 files analyzed",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteTextClean(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	run := Run{Result: checker.Result{ContractsChecked: 3, FilesAnalyzed: 4}}
	require.NoError(t, Write(&buf, run, Options{}))
	assert.Equal(t, "3 contracts checked, 0 violations, 4 files analyzed\n", buf.String())
}

func TestWriteTextLimit(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: Text, Max: 1}))
	assert.Contains(t, buf.String(), "... and 1 more\n")
	assert.NotContains(t, buf.String(), "KS70007")
}

func TestWriteTextColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: Text, Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: JSON}))

	var out struct {
		Project          string `json:"project"`
		ContractsChecked int    `json:"contractsChecked"`
		ViolationsFound  int    `json:"violationsFound"`
		Diagnostics      []struct {
			Code     string `json:"code"`
			Title    string `json:"title"`
			Location *struct {
				File   string `json:"file"`
				Line   int    `json:"line"`
				Column int    `json:"column"`
			} `json:"location"`
			Scope    string `json:"scope"`
			Contract *struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"contract"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "shop", out.Project)
	assert.Equal(t, 5, out.ContractsChecked)
	require.Len(t, out.Diagnostics, 2)
	first := out.Diagnostics[0]
	assert.Equal(t, "KS70001", first.Code)
	assert.Equal(t, "Forbidden dependency", first.Title)
	require.NotNil(t, first.Location)
	assert.Equal(t, 3, first.Location.Line)
	require.NotNil(t, first.Contract)
	assert.Equal(t, "noDependency", first.Contract.Type)
	assert.Nil(t, out.Diagnostics[1].Location)
	assert.Equal(t, "ordering", out.Diagnostics[1].Scope)
}

func TestWriteJSONEmptyList(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Run{}, Options{Format: JSON}))
	assert.Contains(t, buf.String(), `"diagnostics": []`)
}

func TestWriteTOON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRun(), Options{Format: TOON}))
	assert.True(t, strings.HasPrefix(buf.String(), "project: shop\n"))
	assert.Contains(t, buf.String(), "diagnostics[2]{code,file,line,column,scope,message,contract}:")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, Run{}, Options{Format: "xml"}))
}

func TestUseColor(t *testing.T) {
	t.Parallel()
	assert.True(t, UseColor("on", nil))
	assert.False(t, UseColor("off", nil))
	assert.False(t, UseColor("auto", nil))
}

func TestWriteCodes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteCodes(&buf, plugins.Builtins()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(diag.Codes()))
	assert.Equal(t, "70001\tKS70001\tForbidden dependency\tnoDependency", lines[0])
	assert.Contains(t, lines, "70003\tKS70003\tImpure import\tpure")
	assert.Equal(t, "70099\tKS70099\tInvalid contract\t-", lines[len(lines)-1])
}
