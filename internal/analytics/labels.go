package analytics

import (
	"strings"

	"prediction-dashboard-service/internal/models"
)

// Labels are the gibberish-detector classes, in chart order.
var Labels = []string{"Clean", "Mild Gibberish", "Noise", "Word Salad"}

// CountByLabel counts records per canonical label, matching predicted_label
// case-insensitively. Records with any other label are counted as Unmapped
// and contribute to no category.
func CountByLabel(records []models.ClassificationResult) Histogram {
	h := Histogram{
		Categories: append([]string(nil), Labels...),
		Counts:     make([]int, len(Labels)),
	}
	for _, r := range records {
		matched := false
		for i, label := range Labels {
			if strings.EqualFold(string(r.PredictedLabel), label) {
				h.Counts[i]++
				matched = true
			}
		}
		if !matched {
			h.Unmapped++
		}
	}
	return h
}
