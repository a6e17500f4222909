package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"prediction-dashboard-service/internal/models"
)

// ErrMetricNotApplicable is returned when a metric is requested from a batch
// variant that does not carry it.
var ErrMetricNotApplicable = errors.New("metric not applicable to batch variant")

// Metric selects the record field plotted by a time series.
type Metric string

const (
	MetricOutputScore       Metric = "output_score"
	MetricProbClean         Metric = "prob_clean"
	MetricProbMildGibberish Metric = "prob_mild_gibberish"
	MetricProbNoise         Metric = "prob_noise"
	MetricProbWordSalad     Metric = "prob_word_salad"
	MetricProcessingTime    Metric = "processing_time_ms"
)

// Rounded reports whether series values for m are rounded to 4 decimals.
// Processing time is plotted raw.
func (m Metric) Rounded() bool {
	return m != MetricProcessingTime
}

// Point is one time-series sample. X is epoch milliseconds.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON writes {"x":..,"y":..}, with null for NaN coordinates.
func (p Point) MarshalJSON() ([]byte, error) {
	x, err := marshalCoord(p.X)
	if err != nil {
		return nil, err
	}
	y, err := marshalCoord(p.Y)
	if err != nil {
		return nil, err
	}
	return []byte(`{"x":` + string(x) + `,"y":` + string(y) + `}`), nil
}

func marshalCoord(f float64) ([]byte, error) {
	return models.Value(f).MarshalJSON()
}

// UnmarshalJSON reads {"x":..,"y":..}; null decodes to NaN.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		X models.Value `json:"x"`
		Y models.Value `json:"y"`
	}
	raw.X, raw.Y = models.Missing(), models.Missing()
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.X, p.Y = raw.X.Float(), raw.Y.Float()
	return nil
}

// Round4 rounds v to 4 decimal places the way a fixed-point decimal rendering
// does. It is idempotent and passes NaN and infinities through.
func Round4(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// BuildSeries maps every record to a point for metric m, in batch order.
func BuildSeries(batch models.Batch, m Metric) ([]Point, error) {
	values, err := metricValues(batch, m)
	if err != nil {
		return nil, err
	}

	stamps := batch.Timestamps()
	points := make([]Point, len(values))
	for i, v := range values {
		y := v.Float()
		if m.Rounded() {
			y = Round4(y)
		}
		points[i] = Point{X: stamps[i].Millis(), Y: y}
	}
	return points, nil
}

func metricValues(batch models.Batch, m Metric) ([]models.Value, error) {
	if m == MetricProcessingTime {
		return batch.ProcessingTimes(), nil
	}

	switch batch.Variant {
	case models.VariantScore:
		if m != MetricOutputScore {
			break
		}
		out := make([]models.Value, len(batch.Scores))
		for i, r := range batch.Scores {
			out[i] = r.OutputScore
		}
		return out, nil

	case models.VariantClassification:
		field := classificationField(m)
		if field == nil {
			break
		}
		out := make([]models.Value, len(batch.Classifications))
		for i, r := range batch.Classifications {
			out[i] = field(r)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s on %q", ErrMetricNotApplicable, m, batch.Variant)
}

func classificationField(m Metric) func(models.ClassificationResult) models.Value {
	switch m {
	case MetricProbClean:
		return func(r models.ClassificationResult) models.Value { return r.ProbClean }
	case MetricProbMildGibberish:
		return func(r models.ClassificationResult) models.Value { return r.ProbMildGibberish }
	case MetricProbNoise:
		return func(r models.ClassificationResult) models.Value { return r.ProbNoise }
	case MetricProbWordSalad:
		return func(r models.ClassificationResult) models.Value { return r.ProbWordSalad }
	default:
		return nil
	}
}

// scoreValues returns output_score for every record of a score batch.
func scoreValues(batch models.Batch) []float64 {
	out := make([]float64, len(batch.Scores))
	for i, r := range batch.Scores {
		out[i] = r.OutputScore.Float()
	}
	return out
}
