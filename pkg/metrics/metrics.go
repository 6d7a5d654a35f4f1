// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics tracks analysis outcomes
type BusinessMetrics struct {
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	CredibilityScore    prometheus.Histogram
	FlagsRaisedTotal    *prometheus.CounterVec
	RealTimeStatusTotal *prometheus.CounterVec
}

// NewBusinessMetrics registers the analysis collectors with reg
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(reg)

	return &BusinessMetrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed statement analyses by confidence level",
		}, []string{"confidence_level"}),

		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analyzing a statement",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"status"}),

		CredibilityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "credibility_score",
			Help:      "Distribution of overall credibility scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),

		FlagsRaisedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_flags_total",
			Help:      "Risk flags raised by kind",
		}, []string{"kind"}),

		RealTimeStatusTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_status_total",
			Help:      "Real-time classifications by status",
		}, []string{"status"}),
	}
}

// ObserveDurationWithExemplar records seconds on hist and links the sample to
// the trace in ctx when there is one
func (m *BusinessMetrics) ObserveDurationWithExemplar(ctx context.Context, hist *prometheus.HistogramVec, seconds float64, labels ...string) {
	observer := hist.WithLabelValues(labels...)

	sc := trace.SpanContextFromContext(ctx)
	if eo, ok := observer.(prometheus.ExemplarObserver); ok && sc.HasTraceID() {
		eo.ObserveWithExemplar(seconds, prometheus.Labels{"trace_id": sc.TraceID().String()})
		return
	}
	observer.Observe(seconds)
}

// DatabaseMetrics exposes sql.DBStats as gauges
type DatabaseMetrics struct {
	OpenConnections prometheus.Gauge
	InUse           prometheus.Gauge
	Idle            prometheus.Gauge
	WaitCount       prometheus.Gauge
}

// NewDatabaseMetrics registers the connection pool gauges with reg
func NewDatabaseMetrics(namespace string, reg prometheus.Registerer) *DatabaseMetrics {
	factory := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      name,
			Help:      help,
		})
	}

	return &DatabaseMetrics{
		OpenConnections: gauge("open_connections", "Established connections"),
		InUse:           gauge("in_use_connections", "Connections currently in use"),
		Idle:            gauge("idle_connections", "Idle connections"),
		WaitCount:       gauge("wait_count", "Total connections waited for"),
	}
}

// UpdateDBStats copies the pool statistics of db into the gauges
func (m *DatabaseMetrics) UpdateDBStats(db *sql.DB) {
	stats := db.Stats()
	m.OpenConnections.Set(float64(stats.OpenConnections))
	m.InUse.Set(float64(stats.InUse))
	m.Idle.Set(float64(stats.Idle))
	m.WaitCount.Set(float64(stats.WaitCount))
}
