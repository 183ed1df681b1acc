package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flood-tracking service.
type Metrics struct {
	ContentCreated *prometheus.CounterVec // labels: collection
	ContentUpdated *prometheus.CounterVec // labels: collection

	// Stale-content sweeper metrics.
	SweepRuns      prometheus.Counter
	SweepMarked    *prometheus.CounterVec // labels: collection
	SweepErrors    *prometheus.CounterVec // labels: collection
	SweepDuration  prometheus.Histogram
	SweeperRunning prometheus.Gauge

	// Snapshot listener metrics.
	FeedSnapshots *prometheus.CounterVec // labels: collection

	// Reverse-geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Emergency alert publisher metrics.
	AlertsPublished prometheus.Counter
	AlertErrors     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ContentCreated,
		m.ContentUpdated,
		m.SweepRuns,
		m.SweepMarked,
		m.SweepErrors,
		m.SweepDuration,
		m.SweeperRunning,
		m.FeedSnapshots,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.AlertsPublished,
		m.AlertErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ContentCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "content_created_total",
			Help:      "Documents created, by collection.",
		}, []string{"collection"}),
		ContentUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "content_updated_total",
			Help:      "Document status or field updates, by collection.",
		}, []string{"collection"}),
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "sweep_runs_total",
			Help:      "Completed stale-content sweep cycles.",
		}),
		SweepMarked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "sweep_marked_total",
			Help:      "Documents marked pending_deletion by the sweeper, by collection.",
		}, []string{"collection"}),
		SweepErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "sweep_errors_total",
			Help:      "Per-collection sweep failures.",
		}, []string{"collection"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodtrack",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a complete sweep across all collections.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SweeperRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodtrack",
			Name:      "sweeper_running",
			Help:      "1 when the sweeper loop is active, 0 when shut down.",
		}),
		FeedSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "feed_snapshots_total",
			Help:      "Snapshot updates delivered to feed consumers, by collection.",
		}, []string{"collection"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "geocode_requests_total",
			Help:      "Reverse-geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "geocode_cache_total",
			Help:      "Reverse-geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodtrack",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geoapify API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodtrack",
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "alerts_published_total",
			Help:      "Emergency alerts published to the alert topic.",
		}),
		AlertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodtrack",
			Name:      "alert_errors_total",
			Help:      "Failed emergency alert publishes.",
		}),
	}
}
