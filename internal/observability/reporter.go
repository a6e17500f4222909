package observability

import (
	"github.com/rs/zerolog"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/observability/logging"
	"prediction-dashboard-service/internal/observability/metrics"
)

// Reporter is the observability sink for chart refreshes. It logs chart
// failures and keeps the refresh metrics current.
type Reporter struct {
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewReporter returns a Reporter writing to m and the global logger.
func NewReporter(m *metrics.Metrics) *Reporter {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Reporter{
		metrics: m,
		logger:  logging.WithComponent("refresh"),
	}
}

// WithLogger returns a copy of r that logs to l.
func (r *Reporter) WithLogger(l zerolog.Logger) *Reporter {
	cp := *r
	cp.logger = l
	return &cp
}

// Report implements analytics.Reporter.
func (r *Reporter) Report(ev analytics.Event) {
	r.metrics.RecordChartFailure(string(ev.Chart))
	l := logging.WithChart(r.logger, ev.RefreshID, string(ev.Variant), string(ev.Chart))
	l.Error().
		Err(ev.Err).
		Msg("Chart refresh failed")
}

// Observe records the outcome of a finished refresh pass.
func (r *Reporter) Observe(rep analytics.Report) {
	l := logging.WithRefresh(r.logger, rep.ID, string(rep.Variant))
	if len(rep.Results) == 0 {
		l.Debug().Msg("Empty batch, refresh skipped")
		return
	}

	r.metrics.RecordRefresh(string(rep.Variant), rep.Records, rep.Duration.Seconds())
	for _, res := range rep.Results {
		r.metrics.RecordChartUpdate(string(res.Chart), string(res.Outcome))
	}

	l.Info().
		Int("records", rep.Records).
		Int("updated", rep.Count(analytics.OutcomeUpdated)).
		Int("skipped", rep.Count(analytics.OutcomeSkipped)).
		Int("failed", rep.Count(analytics.OutcomeFailed)).
		Dur("duration", rep.Duration).
		Msg("Charts refreshed")
}

// ObserveUnmapped records inputs that histograms left out.
func (r *Reporter) ObserveUnmapped(labels, scores int) {
	if labels == 0 && scores == 0 {
		return
	}
	r.metrics.RecordUnmapped(labels, scores)
	r.logger.Warn().
		Int("unmappedLabels", labels).
		Int("outOfRangeScores", scores).
		Msg("Records excluded from distribution charts")
}
