package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "iot_etl"

// pushJob is the Pushgateway job label for loader runs.
const pushJob = "iot_temperature_load"

// Metrics holds the Prometheus counters, histograms, and gauges for the load pipeline.
type Metrics struct {
	RowsRead          prometheus.Counter
	RowsDropped       *prometheus.CounterVec // labels: reason={no_timestamp,no_temperature}
	RowsLoaded        prometheus.Counter
	ReadingsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
	RunFailures       *prometheus.CounterVec // labels: stage={extract,transform,load}

	RunDuration        prometheus.Histogram
	LastSuccessSeconds prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total data rows read from input files.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for a missing required field, by reason.",
		}, []string{"reason"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total readings committed to the store.",
		}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_published_total",
			Help:      "Total readings published to downstream brokers.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed publish batches.",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed pipeline runs by stage.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.RowsDropped,
		m.RowsLoaded,
		m.ReadingsPublished,
		m.PublishErrors,
		m.RunFailures,
		m.RunDuration,
		m.LastSuccessSeconds,
	}
}

// Push sends the pipeline metrics to a Prometheus Pushgateway under the
// loader job label.
func (m *Metrics) Push(ctx context.Context, url string) error {
	p := push.New(url, pushJob)
	for _, c := range m.collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
