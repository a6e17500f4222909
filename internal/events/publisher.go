// Package events publishes chart series updates and refresh reports to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/observability/metrics"
)

// Event types carried in the eventType header.
const (
	EventTypeSeries = "dashboard.chart.series"
	EventTypeReport = "dashboard.refresh.report"
)

// SeriesEvent is the payload published for every replaced chart series.
type SeriesEvent struct {
	EventType string           `json:"eventType"`
	Chart     string           `json:"chart"`
	Timestamp int64            `json:"timestamp"`
	Series    analytics.Series `json:"series"`
}

// ReportEvent is the payload published after every refresh pass.
type ReportEvent struct {
	EventType string           `json:"eventType"`
	Timestamp int64            `json:"timestamp"`
	Report    analytics.Report `json:"report"`
}

// Publisher publishes dashboard events to separate Kafka topics.
type Publisher struct {
	writerSeries  *kafka.Writer
	writerReports *kafka.Writer
	principal     string
	topicSeries   string
	topicReports  string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicSeries  string
	TopicReports string
	Principal    string
	Enabled      bool
}

// New creates a new Kafka event publisher with separate topics for series
// updates and refresh reports.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	// Handle nil config case
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:    cfg.Principal,
			topicSeries:  cfg.TopicSeries,
			topicReports: cfg.TopicReports,
			enabled:      false,
			metrics:      m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSeries", cfg.TopicSeries).
		Str("topicReports", cfg.TopicReports).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSeries:  newWriter(cfg.Brokers, cfg.TopicSeries, transport),
		writerReports: newWriter(cfg.Brokers, cfg.TopicReports, transport),
		principal:     cfg.Principal,
		topicSeries:   cfg.TopicSeries,
		topicReports:  cfg.TopicReports,
		enabled:       true,
		metrics:       m,
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// WithMetrics replaces the metrics sink.
func (p *Publisher) WithMetrics(m *metrics.Metrics) *Publisher {
	p.metrics = m
	return p
}

// Handle returns a chart handle that publishes every replaced series of name.
func (p *Publisher) Handle(name analytics.ChartName) analytics.ChartHandle {
	return analytics.ChartHandleFunc(func(ctx context.Context, s analytics.Series) error {
		return p.PublishSeries(ctx, name, s)
	})
}

// PublishSeries publishes a replaced series, keyed by chart so a chart's
// updates stay ordered on one partition.
func (p *Publisher) PublishSeries(ctx context.Context, name analytics.ChartName, s analytics.Series) error {
	ev := SeriesEvent{
		EventType: EventTypeSeries,
		Chart:     string(name),
		Timestamp: time.Now().UnixMilli(),
		Series:    s,
	}
	return p.publish(ctx, p.writerSeries, p.topicSeries, EventTypeSeries, string(name), ev)
}

// PublishReport publishes a refresh report keyed by refresh id.
func (p *Publisher) PublishReport(ctx context.Context, rep analytics.Report) error {
	ev := ReportEvent{
		EventType: EventTypeReport,
		Timestamp: time.Now().UnixMilli(),
		Report:    rep,
	}
	return p.publish(ctx, p.writerReports, p.topicReports, EventTypeReport, rep.ID, ev)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		Int("bytes", len(payload)).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSeries != nil {
		if e := p.writerSeries.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing series writer")
			err = e
		}
	}
	if p.writerReports != nil {
		if e := p.writerReports.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing reports writer")
			err = e
		}
	}
	return err
}
