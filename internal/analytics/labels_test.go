package analytics

import (
	"reflect"
	"testing"

	"prediction-dashboard-service/internal/models"
)

func labelled(labels ...string) []models.ClassificationResult {
	out := make([]models.ClassificationResult, len(labels))
	for i, l := range labels {
		out[i] = models.ClassificationResult{PredictedLabel: models.Text(l)}
	}
	return out
}

func TestCountByLabel(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected []int
		unmapped int
	}{
		{"example", []string{"Clean", "clean", "Noise", "Unknown"}, []int{2, 0, 1, 0}, 1},
		{"case insensitive", []string{"MILD GIBBERISH", "word salad", "wOrD sAlAd"}, []int{0, 1, 0, 2}, 0},
		{"no trimming", []string{" Clean", "Noise "}, []int{0, 0, 0, 0}, 2},
		{"model labels with different spelling", []string{"mild_gibberish", "word-salad"}, []int{0, 0, 0, 0}, 2},
		{"empty", nil, []int{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CountByLabel(labelled(tt.labels...))
			if !reflect.DeepEqual(h.Categories, Labels) {
				t.Errorf("expected categories %v, got %v", Labels, h.Categories)
			}
			if !reflect.DeepEqual(h.Counts, tt.expected) {
				t.Errorf("expected counts %v, got %v", tt.expected, h.Counts)
			}
			if h.Unmapped != tt.unmapped {
				t.Errorf("expected %d unmapped, got %d", tt.unmapped, h.Unmapped)
			}
		})
	}
}

func TestCountByLabel_TotalNeverExceedsBatch(t *testing.T) {
	records := labelled("Clean", "noise", "Noise", "junk", "", "Word Salad", "Mild Gibberish")
	h := CountByLabel(records)
	if h.Total() > len(records) {
		t.Errorf("expected total <= %d, got %d", len(records), h.Total())
	}
	if h.Total()+h.Unmapped != len(records) {
		t.Errorf("expected mapped+unmapped == %d, got %d", len(records), h.Total()+h.Unmapped)
	}
}
