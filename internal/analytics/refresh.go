package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prediction-dashboard-service/internal/models"
)

// Outcome is the result of refreshing one chart.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ChartResult records what happened to one chart during a refresh.
type ChartResult struct {
	Chart   ChartName `json:"chart"`
	Outcome Outcome   `json:"outcome"`
	Err     error     `json:"-"`
}

// MarshalJSON adds the error text as "error".
func (r ChartResult) MarshalJSON() ([]byte, error) {
	type alias ChartResult
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report summarises one refresh pass.
type Report struct {
	ID       string         `json:"id"`
	Variant  models.Variant `json:"variant"`
	Records  int            `json:"records"`
	Duration time.Duration  `json:"duration"`
	Results  []ChartResult  `json:"results"`
}

// Failed returns the results of charts whose update failed.
func (r Report) Failed() []ChartResult {
	var out []ChartResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// Count returns how many charts ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Event is sent to the Reporter when a chart fails to refresh.
type Event struct {
	RefreshID string
	Chart     ChartName
	Variant   models.Variant
	Err       error
}

// Reporter receives chart failure events.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ev Event)

// Report calls f.
func (f ReporterFunc) Report(ev Event) {
	f(ev)
}

type nopReporter struct{}

func (nopReporter) Report(Event) {}

// Refresher drives every chart of a registry from one batch.
type Refresher struct {
	reporter Reporter
}

// NewRefresher returns a Refresher reporting failures to reporter. A nil
// reporter discards events.
func NewRefresher(reporter Reporter) *Refresher {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Refresher{reporter: reporter}
}

// chartJob builds the replacement series for one chart.
type chartJob struct {
	chart ChartName
	build func() (Series, error)
}

// Refresh replaces the series of every displayed chart that applies to the
// batch variant. An empty batch, or one with an unknown variant, touches no
// chart. A failing chart is reported and does not stop its siblings.
func (r *Refresher) Refresh(ctx context.Context, charts Registry, batch models.Batch) Report {
	start := time.Now()
	report := Report{
		ID:      uuid.NewString(),
		Variant: batch.Variant,
		Records: batch.Len(),
	}
	if batch.Empty() {
		return report
	}

	ctx, span := otel.Tracer("internal/analytics").Start(ctx, "analytics.refresh")
	defer span.End()
	span.SetAttributes(
		attribute.String("refresh.id", report.ID),
		attribute.String("batch.variant", string(batch.Variant)),
		attribute.Int("batch.records", report.Records),
	)

	for _, job := range plan(batch) {
		res := r.run(ctx, charts[job.chart], job)
		if res.Outcome == OutcomeFailed {
			span.RecordError(res.Err, attributeChart(job.chart))
			r.reporter.Report(Event{
				RefreshID: report.ID,
				Chart:     job.chart,
				Variant:   batch.Variant,
				Err:       res.Err,
			})
		}
		report.Results = append(report.Results, res)
	}

	if n := report.Count(OutcomeFailed); n > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d chart(s) failed", n))
	}
	report.Duration = time.Since(start)
	return report
}

func (r *Refresher) run(ctx context.Context, handle ChartHandle, job chartJob) (res ChartResult) {
	res = ChartResult{Chart: job.chart}
	if handle == nil {
		res.Outcome = OutcomeSkipped
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic: %v", p)
		}
	}()

	s, err := job.build()
	if err == nil {
		err = handle.ReplaceSeries(ctx, s)
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeUpdated
	return res
}

// plan lists the charts a batch refreshes, variant charts first and the
// shared processing-time chart last.
func plan(batch models.Batch) []chartJob {
	var jobs []chartJob
	switch batch.Variant {
	case models.VariantScore:
		jobs = append(jobs,
			timeSeriesJob(batch, ChartScoreTimeSeries, "Score", MetricOutputScore),
			chartJob{chart: ChartScoreDistribution, build: func() (Series, error) {
				return HistogramSeries(ChartScoreDistribution, "Count", Bucketize(scoreValues(batch))), nil
			}},
		)
	case models.VariantClassification:
		jobs = append(jobs,
			timeSeriesJob(batch, ChartCleanProb, "Clean Probability", MetricProbClean),
			timeSeriesJob(batch, ChartMildGibberish, "Mild Gibberish Probability", MetricProbMildGibberish),
			timeSeriesJob(batch, ChartNoise, "Noise Probability", MetricProbNoise),
			timeSeriesJob(batch, ChartWordSalad, "Word Salad Probability", MetricProbWordSalad),
			chartJob{chart: ChartLabelDistribution, build: func() (Series, error) {
				return HistogramSeries(ChartLabelDistribution, "Count", CountByLabel(batch.Classifications)), nil
			}},
		)
	}
	return append(jobs, timeSeriesJob(batch, ChartProcessingTime, "Processing Time", MetricProcessingTime))
}

func timeSeriesJob(batch models.Batch, chart ChartName, name string, m Metric) chartJob {
	return chartJob{chart: chart, build: func() (Series, error) {
		points, err := BuildSeries(batch, m)
		if err != nil {
			return Series{}, err
		}
		return TimeSeries(chart, name, points), nil
	}}
}

func attributeChart(chart ChartName) trace.EventOption {
	return trace.WithAttributes(attribute.String("chart", string(chart)))
}
