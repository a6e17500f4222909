package analytics

import (
	"math"
	"reflect"
	"testing"

	"prediction-dashboard-service/internal/models"
)

func TestBucketize_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []int
	}{
		{"example", []float64{0.10, 0.30, 0.80}, []int{1, 1, 0, 1}},
		{"lower edges are inclusive", []float64{0, 0.25, 0.5, 0.75}, []int{1, 1, 1, 1}},
		{"just below edges", []float64{0.2499, 0.4999, 0.7499}, []int{1, 1, 1, 0}},
		{"one is in the last bucket", []float64{1.0}, []int{0, 0, 0, 1}},
		{"out of range is excluded", []float64{-0.01, 1.0001, 2, -5}, []int{0, 0, 0, 0}},
		{"NaN is excluded", []float64{math.NaN(), 0.6}, []int{0, 0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Bucketize(tt.values)
			if !reflect.DeepEqual(h.Counts, tt.expected) {
				t.Errorf("expected counts %v, got %v", tt.expected, h.Counts)
			}
		})
	}
}

func TestBucketize_Empty(t *testing.T) {
	for _, values := range [][]float64{nil, {}} {
		h := Bucketize(values)
		if !reflect.DeepEqual(h.Categories, ScoreRanges) {
			t.Errorf("expected categories %v, got %v", ScoreRanges, h.Categories)
		}
		if !reflect.DeepEqual(h.Counts, []int{0, 0, 0, 0}) {
			t.Errorf("expected zero counts, got %v", h.Counts)
		}
	}
}

func TestBucketize_CountsSumToInRangeValues(t *testing.T) {
	values := []float64{-1, 0, 0.1, 0.26, 0.5, 0.74, 0.75, 0.99, 1, 1.5, math.NaN(), math.Inf(1)}
	inRange := 0
	for _, v := range values {
		if v >= 0 && v <= 1 {
			inRange++
		}
	}

	h := Bucketize(values)
	if h.Total() != inRange {
		t.Errorf("expected bucket total %d, got %d", inRange, h.Total())
	}
	if h.Unmapped != len(values)-inRange {
		t.Errorf("expected %d unmapped, got %d", len(values)-inRange, h.Unmapped)
	}
}

func TestBucketize_CategoriesNotShared(t *testing.T) {
	h := Bucketize(nil)
	h.Categories[0] = "changed"
	if ScoreRanges[0] != "0-0.25" {
		t.Errorf("expected ScoreRanges to be untouched, got %q", ScoreRanges[0])
	}
}

func TestExcluded(t *testing.T) {
	scores := models.ScoreBatch([]models.ScoreResult{
		{OutputScore: 0.5},
		{OutputScore: 1.2},
		{OutputScore: models.Missing()},
	})
	if labels, out := Excluded(scores); labels != 0 || out != 2 {
		t.Errorf("expected (0, 2), got (%d, %d)", labels, out)
	}

	classes := models.ClassificationBatch([]models.ClassificationResult{
		{PredictedLabel: "noise"},
		{PredictedLabel: "Unknown"},
	})
	if labels, out := Excluded(classes); labels != 1 || out != 0 {
		t.Errorf("expected (1, 0), got (%d, %d)", labels, out)
	}

	if labels, out := Excluded(models.Batch{Variant: "other"}); labels != 0 || out != 0 {
		t.Errorf("expected (0, 0), got (%d, %d)", labels, out)
	}
}
