// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "prediction_dashboard"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Refresh metrics
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	RecordsTotal    *prometheus.CounterVec
	ChartUpdates    *prometheus.CounterVec
	ChartFailures   *prometheus.CounterVec

	// Aggregation metrics
	UnmappedLabels     prometheus.Counter
	OutOfRangeScores   prometheus.Counter
	StatsRequestsTotal *prometheus.CounterVec
	BatchesRejected    *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Websocket metrics
	StreamClients prometheus.Gauge
	StreamDropped prometheus.Counter

	// Probe metrics
	ProbeCalls   *prometheus.CounterVec
	ProbeLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all Prometheus metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Refresh metrics
		RefreshesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Total number of chart set refreshes",
		}, []string{"variant"}),
		RefreshDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a chart set refresh in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"variant"}),
		RecordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Total number of prediction records transformed",
		}, []string{"variant"}),
		ChartUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_updates_total",
			Help:      "Chart refresh results by chart and outcome",
		}, []string{"chart", "outcome"}),
		ChartFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_failures_total",
			Help:      "Total number of chart refresh failures reported",
		}, []string{"chart"}),

		// Aggregation metrics
		UnmappedLabels: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_labels_total",
			Help:      "Classification records whose label matched no canonical class",
		}),
		OutOfRangeScores: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "out_of_range_scores_total",
			Help:      "Scores excluded from the distribution for falling outside [0,1]",
		}),
		StatsRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_requests_total",
			Help:      "Stats computations by variant and result",
		}, []string{"variant", "result"}),
		BatchesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_rejected_total",
			Help:      "Batches rejected at the API boundary",
		}, []string{"reason"}),

		// Kafka publish metrics
		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		// Websocket metrics
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Number of connected websocket clients",
		}),
		StreamDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_updates_dropped_total",
			Help:      "Series updates dropped because the broadcast buffer was full",
		}),

		// Probe metrics
		ProbeCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_probe_calls_total",
			Help:      "gRPC health and reflection calls by method and status code",
		}, []string{"method", "code"}),
		ProbeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_probe_duration_seconds",
			Help:      "gRPC health and reflection call duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"method"}),
	}
}

// RecordRefresh records a finished refresh pass.
func (m *Metrics) RecordRefresh(variant string, records int, durationSeconds float64) {
	m.RefreshesTotal.WithLabelValues(variant).Inc()
	m.RefreshDuration.WithLabelValues(variant).Observe(durationSeconds)
	m.RecordsTotal.WithLabelValues(variant).Add(float64(records))
}

// RecordChartUpdate records the outcome of one chart refresh.
func (m *Metrics) RecordChartUpdate(chart, outcome string) {
	m.ChartUpdates.WithLabelValues(chart, outcome).Inc()
}

// RecordChartFailure records a chart failure reported by the refresher.
func (m *Metrics) RecordChartFailure(chart string) {
	m.ChartFailures.WithLabelValues(chart).Inc()
}

// RecordUnmapped records inputs left out of histogram categories.
func (m *Metrics) RecordUnmapped(labels, scores int) {
	m.UnmappedLabels.Add(float64(labels))
	m.OutOfRangeScores.Add(float64(scores))
}

// RecordStats records a stats computation.
func (m *Metrics) RecordStats(variant string, err error) {
	result := "ok"
	if err != nil {
		result = "empty"
	}
	m.StatsRequestsTotal.WithLabelValues(variant, result).Inc()
}

// RecordRejected records a batch rejected before processing.
func (m *Metrics) RecordRejected(reason string) {
	m.BatchesRejected.WithLabelValues(reason).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordProbe records one gRPC probe call.
func (m *Metrics) RecordProbe(method, code string, latencySeconds float64) {
	m.ProbeCalls.WithLabelValues(method, code).Inc()
	m.ProbeLatency.WithLabelValues(method).Observe(latencySeconds)
}
