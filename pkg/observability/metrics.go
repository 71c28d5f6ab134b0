package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the fetch-parse-cache
// pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec   // labels: report, outcome={success,error,empty}
	FetchDuration *prometheus.HistogramVec // labels: report
	CacheLookups  *prometheus.CounterVec   // labels: report, result={hit,miss,stale}
	RowsParsed    *prometheus.CounterVec   // labels: report
	RowsSkipped   *prometheus.CounterVec   // labels: report
}

// NewMetrics creates and registers all collectors with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.CacheLookups,
		m.RowsParsed,
		m.RowsSkipped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, so parallel tests do not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gbb_board",
			Name:      "fetch_requests_total",
			Help:      "Upstream report fetches by report and outcome.",
		}, []string{"report", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gbb_board",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 40},
		}, []string{"report"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gbb_board",
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by result.",
		}, []string{"report", "result"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gbb_board",
			Name:      "rows_parsed_total",
			Help:      "Rows that passed coercion per report.",
		}, []string{"report"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gbb_board",
			Name:      "rows_skipped_total",
			Help:      "Rows dropped during coercion per report.",
		}, []string{"report"}),
	}
}
