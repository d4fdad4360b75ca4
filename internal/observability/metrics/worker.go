package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// WorkerMetrics tracks batch processing: outcomes per row, batch durations
// and in-flight batches.
type WorkerMetrics struct {
	registry *prometheus.Registry

	rowsTotal     *prometheus.CounterVec
	batchTotal    *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	batchInFlight prometheus.Gauge
	rowsPerBatch  prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	rowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "importer",
			Name:      "rows_total",
			Help:      "Total processed rows by terminal outcome.",
		},
		[]string{"service", "outcome"},
	)
	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slc",
			Subsystem: "importer",
			Name:      "batch_total",
			Help:      "Total processed batches by status.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slc",
			Subsystem: "importer",
			Name:      "batch_duration_seconds",
			Help:      "Batch processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "slc",
			Subsystem: "importer",
			Name:      "batch_in_flight",
			Help:      "Number of batches currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rowsPerBatch := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slc",
			Subsystem: "importer",
			Name:      "rows_per_batch",
			Help:      "Row count per processed batch.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(rowsTotal, batchTotal, batchDuration, batchInFlight, rowsPerBatch)

	return &WorkerMetrics{
		registry:      registry,
		rowsTotal:     rowsTotal,
		batchTotal:    batchTotal,
		batchDuration: batchDuration,
		batchInFlight: batchInFlight,
		rowsPerBatch:  rowsPerBatch,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, result *domain.BatchResult, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())

	if result == nil {
		return
	}
	m.rowsPerBatch.Observe(float64(result.Summary.Rows))
	for outcome, count := range result.Summary.ByOutcome {
		m.rowsTotal.WithLabelValues(service, string(outcome)).Add(float64(count))
	}
}
