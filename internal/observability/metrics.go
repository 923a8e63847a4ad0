package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_crcl"

// Metrics holds the Prometheus collectors for the classification runner.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration   prometheus.Histogram
	RunnerRunning prometheus.Gauge

	SectionsClassified *prometheus.CounterVec // labels: scale={0,1,2,3}
	SourceErrors       prometheus.Counter
	ReportsPublished   *prometheus.CounterVec // labels: kind={section,regional}
	PublishErrors      prometheus.Counter

	RegionalIndex     prometheus.Gauge
	RegionalPowerMean prometheus.Gauge

	SectionCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RunnerRunning,
		m.SectionsClassified,
		m.SourceErrors,
		m.ReportsPublished,
		m.PublishErrors,
		m.RegionalIndex,
		m.RegionalPowerMean,
		m.SectionCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed batch runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full classification run.",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}),
		RunnerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runner_running",
			Help:      "1 while the runner loop is active, 0 when stopped.",
		}),
		SectionsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_classified_total",
			Help:      "River sections classified in completed runs, by scale.",
		}, []string{"scale"}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failures retrieving sections or forecasts.",
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Metric reports handed to the bus, by kind.",
		}, []string{"kind"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Metric reports the bus rejected.",
		}),
		RegionalIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regional_index",
			Help:      "Overall crisis classification index of the last run (0-3).",
		}),
		RegionalPowerMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regional_power_mean",
			Help:      "Power mean of section scales in the last run, before discretization.",
		}),
		SectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_cache_total",
			Help:      "Section list cache lookups by result.",
		}, []string{"result"}),
	}
}
