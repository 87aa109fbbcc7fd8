package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/archcheck/internal/model"
)

func TestObserveContract(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveContract(model.NoDependency, 2, 10, time.Millisecond)
	m.ObserveContract(model.NoDependency, 1, 5, time.Millisecond)
	m.ObserveInvalid(model.Purity)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.contractsTotal.WithLabelValues("noDependency")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.violationsTotal.WithLabelValues("noDependency")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.filesAnalyzed.WithLabelValues("noDependency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidTotal.WithLabelValues("purity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violationsTotal.WithLabelValues("purity")))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveContract(model.NoCycles, 0, 3, 2*time.Millisecond)
	m.ObserveRun(42, time.Second, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "archcheck.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `archcheck_contracts_checked_total{type="noCycles"} 1`)
	assert.Contains(t, text, "archcheck_files_discovered 42")
	assert.Contains(t, text, "archcheck_last_run_timestamp_seconds 1.7e+09")
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
