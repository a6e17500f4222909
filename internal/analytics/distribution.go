package analytics

import "prediction-dashboard-service/internal/models"

// Histogram is a fixed-category count chart.
type Histogram struct {
	Categories []string `json:"categories"`
	Counts     []int    `json:"counts"`
	// Unmapped counts inputs that fell in no category.
	Unmapped int `json:"unmapped"`
}

// Total returns the sum of the category counts.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// ScoreRanges are the distribution categories, lowest first.
var ScoreRanges = []string{"0-0.25", "0.25-0.5", "0.5-0.75", "0.75-1.0"}

// Bucketize counts values into [0,0.25), [0.25,0.5), [0.5,0.75) and [0.75,1.0].
// Values outside [0,1], including NaN, are left out of every bucket.
func Bucketize(values []float64) Histogram {
	h := Histogram{
		Categories: append([]string(nil), ScoreRanges...),
		Counts:     make([]int, len(ScoreRanges)),
	}
	for _, v := range values {
		i := bucketIndex(v)
		if i < 0 {
			h.Unmapped++
			continue
		}
		h.Counts[i]++
	}
	return h
}

func bucketIndex(v float64) int {
	switch {
	case v >= 0 && v < 0.25:
		return 0
	case v >= 0.25 && v < 0.5:
		return 1
	case v >= 0.5 && v < 0.75:
		return 2
	case v >= 0.75 && v <= 1:
		return 3
	default:
		return -1
	}
}

// Excluded returns how many records of batch the variant's distribution
// chart leaves out: unknown labels for classification batches, scores
// outside [0,1] for score batches.
func Excluded(batch models.Batch) (labels, scores int) {
	switch batch.Variant {
	case models.VariantScore:
		return 0, Bucketize(scoreValues(batch)).Unmapped
	case models.VariantClassification:
		return CountByLabel(batch.Classifications).Unmapped, 0
	}
	return 0, 0
}
