// Package metrics records run statistics in a private Prometheus registry
// and writes them in the textfile exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/phobologic/archcheck/internal/model"
)

// Metrics implements checker.Recorder.
type Metrics struct {
	reg *prometheus.Registry

	contractsTotal   *prometheus.CounterVec
	invalidTotal     *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	filesAnalyzed    *prometheus.CounterVec
	contractDuration *prometheus.HistogramVec
	filesDiscovered  prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRun          prometheus.Gauge
}

// New returns metrics bound to a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		contractsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_contracts_checked_total",
			Help: "Contracts evaluated by type",
		}, []string{"type"}),
		invalidTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_contracts_invalid_total",
			Help: "Contracts rejected by argument validation, by type",
		}, []string{"type"}),
		violationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_violations_total",
			Help: "Diagnostics reported by contract type",
		}, []string{"type"}),
		filesAnalyzed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_files_analyzed_total",
			Help: "Files analyzed by contract type",
		}, []string{"type"}),
		contractDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archcheck_contract_duration_seconds",
			Help:    "Contract evaluation time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 0.1ms to ~1.6s
		}, []string{"type"}),
		filesDiscovered: f.NewGauge(prometheus.GaugeOpts{
			Name: "archcheck_files_discovered",
			Help: "Source files found in the project",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "archcheck_run_duration_seconds",
			Help: "Wall time of the last check run",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "archcheck_last_run_timestamp_seconds",
			Help: "Unix time the last check run finished",
		}),
	}
}

func (m *Metrics) ObserveContract(typ model.ContractType, violations, files int, elapsed time.Duration) {
	label := typ.String()
	m.contractsTotal.WithLabelValues(label).Inc()
	m.violationsTotal.WithLabelValues(label).Add(float64(violations))
	m.filesAnalyzed.WithLabelValues(label).Add(float64(files))
	m.contractDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveInvalid(typ model.ContractType) {
	m.invalidTotal.WithLabelValues(typ.String()).Inc()
	m.violationsTotal.WithLabelValues(typ.String()).Inc()
}

// ObserveRun records project-level figures for one run.
func (m *Metrics) ObserveRun(files int, elapsed time.Duration, finished time.Time) {
	m.filesDiscovered.Set(float64(files))
	m.runDuration.Set(elapsed.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes every metric to path, replacing it atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
