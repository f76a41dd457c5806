package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// telemetry ETL service.
type Metrics struct {
	// Parsing metrics, labelled by instrument family.
	LinesClassified *prometheus.CounterVec // labels: instrument, class={data,recoverable,noise}
	RecordsParsed   *prometheus.CounterVec // labels: instrument
	FilesParsed     *prometheus.CounterVec // labels: instrument
	FilesSkipped    *prometheus.CounterVec // labels: instrument

	// Pipeline metrics.
	LoadDuration     *prometheus.HistogramVec // labels: instrument
	LoadErrors       *prometheus.CounterVec   // labels: instrument
	RecordsDelivered *prometheus.CounterVec   // labels: sink
	SinkErrors       *prometheus.CounterVec   // labels: sink
	PipelineRunning  prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LinesClassified,
		m.RecordsParsed,
		m.FilesParsed,
		m.FilesSkipped,
		m.LoadDuration,
		m.LoadErrors,
		m.RecordsDelivered,
		m.SinkErrors,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so parallel tests avoid
// "already registered" panics against the default registry.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "lines_classified_total",
			Help:      "Raw lines inspected, by instrument and classification.",
		}, []string{"instrument", "class"}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "records_parsed_total",
			Help:      "Typed records produced by load calls.",
		}, []string{"instrument"}),
		FilesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "files_parsed_total",
			Help:      "Dump files fully parsed.",
		}, []string{"instrument"}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "files_skipped_total",
			Help:      "Files skipped for a non-matching extension.",
		}, []string{"instrument"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "buoy_etl",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete load call including the cast pass.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"instrument"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "load_errors_total",
			Help:      "Load calls aborted by I/O or cast failures.",
		}, []string{"instrument"}),
		RecordsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "records_delivered_total",
			Help:      "Records delivered to a sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buoy_etl",
			Name:      "sink_errors_total",
			Help:      "Failed sink deliveries.",
		}, []string{"sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "buoy_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline loop is active, 0 when shut down.",
		}),
	}
}
