package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/charts"
	"prediction-dashboard-service/internal/config"
	"prediction-dashboard-service/internal/events"
	"prediction-dashboard-service/internal/models"
	"prediction-dashboard-service/internal/observability"
	"prediction-dashboard-service/internal/observability/logging"
	"prediction-dashboard-service/internal/observability/metrics"
	"prediction-dashboard-service/internal/schema"
	"prediction-dashboard-service/internal/stream"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration

	Metrics   *metrics.Metrics
	Store     *charts.Store
	Hub       *stream.Hub
	Publisher *events.Publisher
	Reporter  *observability.Reporter
	Refresher *analytics.Refresher
	Validator *schema.Validator
	Charts    analytics.Registry

	cancel context.CancelFunc
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Configuration) *Application {
	return NewWithMetrics(cfg, metrics.DefaultMetrics)
}

// NewWithMetrics is New with an explicit metrics sink.
func NewWithMetrics(cfg *config.Configuration, m *metrics.Metrics) *Application {
	a := &Application{
		Cfg:     cfg,
		Metrics: m,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	a.Store = charts.NewStore()
	a.Hub = stream.NewHub(m)
	a.Publisher = events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicSeries:  cfg.Kafka.TopicSeries,
		TopicReports: cfg.Kafka.TopicReports,
		Principal:    cfg.Kafka.Principal,
	}).WithMetrics(m)
	a.Reporter = observability.NewReporter(m)
	a.Refresher = analytics.NewRefresher(a.Reporter)
	a.Validator = schema.New(cfg.Dashboard.MaxBatchSize)

	displayed := make([]analytics.ChartName, 0, len(cfg.Dashboard.Charts))
	for _, name := range cfg.Dashboard.Charts {
		displayed = append(displayed, analytics.ChartName(name))
	}
	var unknown []analytics.ChartName
	a.Charts, unknown = charts.NewRegistry(displayed, a.Store.Handle, a.Hub.Handle, a.Publisher.Handle)
	for _, name := range unknown {
		appLogger.Warn().Str("chart", string(name)).Msg("Unknown chart in DASHBOARD_CHARTS, ignored")
	}

	appLogger.Info().
		Int("charts", len(a.Charts)).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("Prediction dashboard application created")
	return a
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:      a.Cfg.Observability.LogLevel,
		Format:     a.Cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
		Service:    a.Cfg.Service.Name,
	})
	a.Logger = logging.WithComponent("application")

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Ingest refreshes every displayed chart from batch and records the outcome.
func (a *Application) Ingest(ctx context.Context, batch models.Batch) analytics.Report {
	a.Reporter.ObserveUnmapped(analytics.Excluded(batch))

	report := a.Refresher.Refresh(ctx, a.Charts, batch)
	a.Reporter.Observe(report)

	if len(report.Results) > 0 {
		if err := a.Publisher.PublishReport(ctx, report); err != nil {
			a.Logger.Warn().
				Err(err).
				Str("refreshId", report.ID).
				Msg("Failed to publish refresh report")
		}
	}
	return report
}

// Stats summarizes batch for the stats panel.
func (a *Application) Stats(batch models.Batch) (analytics.Stats, error) {
	stats, err := analytics.ComputeStats(batch)
	a.Metrics.RecordStats(string(batch.Variant), err)
	return stats, err
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.Hub.Run(ctx)

	a.StartupTime = time.Now().UTC()
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Prediction dashboard starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if a.cancel != nil {
		a.cancel()
	}
	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Error closing Kafka publisher")
	}
	shutdownLogger.Info().Msg("Prediction dashboard shutting down")
}
