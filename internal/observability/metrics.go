package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment service.
type Metrics struct {
	AnalysesCompleted prometheus.Counter
	AnalysesFailed    prometheus.Counter
	AnalysisDuration  prometheus.Histogram

	// Satellite API metrics.
	PolygonRequests *prometheus.CounterVec   // labels: outcome={success,error}
	PolygonCache    *prometheus.CounterVec   // labels: result={hit,miss}
	SoilRequests    *prometheus.CounterVec   // labels: outcome={success,error}
	NDVIRequests    *prometheus.CounterVec   // labels: window, outcome={usable,empty,error}
	NDVIWindowUsed  *prometheus.CounterVec   // labels: window (includes "none")
	SatAPIDuration  *prometheus.HistogramVec // labels: endpoint={polygon,soil,ndvi}

	// Advisor metrics.
	AdvisorRequests *prometheus.CounterVec // labels: outcome={success,error}
	AdvisorEnabled  prometheus.Gauge

	// Comparison metrics.
	ComparisonAreas    prometheus.Histogram
	ComparisonDuration prometheus.Histogram

	// Result publishing metrics.
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
	PublisherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesCompleted,
		m.AnalysesFailed,
		m.AnalysisDuration,
		m.PolygonRequests,
		m.PolygonCache,
		m.SoilRequests,
		m.NDVIRequests,
		m.NDVIWindowUsed,
		m.SatAPIDuration,
		m.AdvisorRequests,
		m.AdvisorEnabled,
		m.ComparisonAreas,
		m.ComparisonDuration,
		m.AssessmentsPublished,
		m.PublishErrors,
		m.PublisherEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "analyses_completed_total",
			Help:      "Total single-area analyses that produced a result.",
		}),
		AnalysesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "analyses_failed_total",
			Help:      "Total single-area analyses that failed outright.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landq",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete single-area analysis.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PolygonRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "polygon_requests_total",
			Help:      "Polygon registration requests by outcome.",
		}, []string{"outcome"}),
		PolygonCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "polygon_cache_total",
			Help:      "Polygon cache lookups by result.",
		}, []string{"result"}),
		SoilRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "soil_requests_total",
			Help:      "Soil data requests by outcome.",
		}, []string{"outcome"}),
		NDVIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "ndvi_requests_total",
			Help:      "NDVI history requests by look-back window and outcome.",
		}, []string{"window", "outcome"}),
		NDVIWindowUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "ndvi_window_used_total",
			Help:      "Look-back window that ultimately supplied NDVI data (\"none\" when exhausted).",
		}, []string{"window"}),
		SatAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "landq",
			Name:      "satellite_api_duration_seconds",
			Help:      "Satellite API request duration by endpoint.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		AdvisorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "advisor_requests_total",
			Help:      "Generative advisor requests by outcome.",
		}, []string{"outcome"}),
		AdvisorEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landq",
			Name:      "advisor_enabled",
			Help:      "1 when the generative advisor is enabled, 0 otherwise.",
		}),
		ComparisonAreas: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landq",
			Name:      "comparison_areas",
			Help:      "Number of comparison areas produced per comparison request.",
			Buckets:   []float64{0, 1, 2, 3, 4},
		}),
		ComparisonDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landq",
			Name:      "comparison_duration_seconds",
			Help:      "Duration of a complete comparison request.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "assessments_published_total",
			Help:      "Completed assessments published to the results topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landq",
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish an assessment.",
		}),
		PublisherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "landq",
			Name:      "publisher_enabled",
			Help:      "1 when the kafka results publisher is enabled, 0 otherwise.",
		}),
	}
}
