// Package analytics turns prediction result batches into dashboard view models:
// summary statistics, histograms and chart series.
package analytics

import (
	"encoding/json"
	"errors"
	"math"

	"prediction-dashboard-service/internal/models"
)

// ErrEmptyBatch is returned by ComputeStats when there is nothing to summarise.
var ErrEmptyBatch = errors.New("stats: empty batch")

// Stats summarises the designated scalar of a batch.
type Stats struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// MarshalJSON writes NaN average and extrema as null.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Total   int          `json:"total"`
		Average models.Value `json:"average"`
		Min     models.Value `json:"min"`
		Max     models.Value `json:"max"`
	}{s.Total, models.Value(s.Average), models.Value(s.Min), models.Value(s.Max)})
}

// ComputeStats summarises output_score for score batches and prob_clean for
// classification batches.
func ComputeStats(batch models.Batch) (Stats, error) {
	return Summarize(statsScalars(batch))
}

// Summarize computes total, mean and extrema of values. A NaN value makes the
// average and the extrema NaN.
func Summarize(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrEmptyBatch
	}

	sum := 0.0
	lo, hi := values[0], values[0]
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	avg := sum / float64(len(values))
	// Float summation can push the mean a ulp past the extrema.
	if !math.IsNaN(avg) {
		avg = math.Min(math.Max(avg, lo), hi)
	}

	return Stats{
		Total:   len(values),
		Average: avg,
		Min:     lo,
		Max:     hi,
	}, nil
}

func statsScalars(batch models.Batch) []float64 {
	switch batch.Variant {
	case models.VariantScore:
		return scoreValues(batch)
	case models.VariantClassification:
		out := make([]float64, len(batch.Classifications))
		for i, r := range batch.Classifications {
			out[i] = r.ProbClean.Float()
		}
		return out
	default:
		return nil
	}
}
