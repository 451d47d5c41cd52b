package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a cleaning run.
type Metrics struct {
	RecordsExtracted prometheus.Counter
	RecordsLoaded    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Retention metrics.
	RecordsDropped     *prometheus.CounterVec // labels: stage
	RecordsPartitioned *prometheus.CounterVec // labels: subset
	DurationsImputed   prometheus.Counter
	MedianDuration     prometheus.Gauge

	// Timing metrics.
	StageDuration *prometheus.HistogramVec // labels: stage={resolve,extract,load_raw,normalize,load}
	RunDuration   prometheus.Gauge

	// Source fetch metrics.
	SourceRequests *prometheus.CounterVec // labels: source={nuforc,iso3166}, outcome={success,error}
}

const namespace = "ufo_etl"

func newMetrics() *Metrics {
	return &Metrics{
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Total raw records read from the source.",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Total clean records written to the sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records discarded by pipeline stage.",
		}, []string{"stage"}),
		RecordsPartitioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_partitioned_total",
			Help:      "Records set aside into an exclusion subset.",
		}, []string{"subset"}),
		DurationsImputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "durations_imputed_total",
			Help:      "Durations filled with the median.",
		}),
		MedianDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "median_duration_seconds",
			Help:      "Median of the parsed durations used for imputation.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each run stage.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 300, 900},
		}, []string{"stage"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last complete run.",
		}),
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "HTTP requests to upstream sources by outcome.",
		}, []string{"source", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsExtracted,
		m.RecordsLoaded,
		m.PipelineRunning,
		m.RecordsDropped,
		m.RecordsPartitioned,
		m.DurationsImputed,
		m.MedianDuration,
		m.StageDuration,
		m.RunDuration,
		m.SourceRequests,
	}
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

// NewUnregisteredMetrics creates Metrics that no registry exports. One-shot
// tools use it to run adapters without serving or dumping metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// format. Batch runs exit before a scrape, so this is how their metrics survive.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
