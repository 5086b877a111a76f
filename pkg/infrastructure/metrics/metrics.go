// Package metrics exposes Prometheus counters for uploads, review
// transitions and exports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
)

// Metrics holds the drafty collectors. It implements application.Observer.
//
// Metrics:
//   - drafty_submits_total{result} - uploads by outcome ("ok" or "error")
//   - drafty_submit_duration_seconds - upload round trip time
//   - drafty_transitions_total{from,to} - workflow status changes
//   - drafty_exported_rows_total - sheets written to CSV
type Metrics struct {
	Registry *prometheus.Registry

	SubmitsTotal     *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
	TransitionsTotal *prometheus.CounterVec
	ExportedRows     prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		SubmitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drafty_submits_total",
				Help: "Total number of document uploads",
			},
			[]string{"result"},
		),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "drafty_submit_duration_seconds",
			Help:    "Duration of document uploads in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		TransitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drafty_transitions_total",
				Help: "Total number of workflow status changes",
			},
			[]string{"from", "to"},
		),
		ExportedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "drafty_exported_rows_total",
			Help: "Total number of sheets exported to CSV",
		}),
	}
}

// SubmitFinished records one upload.
func (m *Metrics) SubmitFinished(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SubmitsTotal.WithLabelValues(result).Inc()
	m.SubmitDuration.Observe(elapsed.Seconds())
}

// StatusChanged records one workflow transition.
func (m *Metrics) StatusChanged(from, to workflow.Status) {
	m.TransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

// Exported records rows written by one export.
func (m *Metrics) Exported(rows int) {
	m.ExportedRows.Add(float64(rows))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
