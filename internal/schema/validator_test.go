package schema

import (
	"errors"
	"strings"
	"testing"

	"prediction-dashboard-service/internal/models"
)

func TestValidator_Decode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		maxSize    int
		wantReason string
		wantLen    int
	}{
		{
			name:    "score batch",
			body:    `{"variant":"vectara","records":[{"output_score":0.4},{"output_score":0.9}]}`,
			wantLen: 2,
		},
		{
			name:    "classification alias",
			body:    `{"variant":"classification","records":[{"predicted_label":"Noise"}]}`,
			wantLen: 1,
		},
		{
			name:    "numeric prediction id",
			body:    `{"variant":"vectara","records":[{"prediction_id":"a","output_score":0.4},{"prediction_id":123,"output_score":0.9}]}`,
			wantLen: 2,
		},
		{
			name:    "empty records allowed",
			body:    `{"variant":"gibberish","records":[]}`,
			wantLen: 0,
		},
		{
			name:       "unknown variant",
			body:       `{"variant":"sentiment","records":[]}`,
			wantReason: ReasonUnknownVariant,
		},
		{
			name:       "missing records",
			body:       `{"variant":"vectara"}`,
			wantReason: ReasonMissingRecords,
		},
		{
			name:       "malformed json",
			body:       `{"variant":`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "records not an array",
			body:       `{"variant":"vectara","records":{"a":1}}`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "too large",
			body:       `{"variant":"vectara","records":[{},{},{}]}`,
			maxSize:    2,
			wantReason: ReasonTooLarge,
		},
		{
			name:    "at the limit",
			body:    `{"variant":"vectara","records":[{},{}]}`,
			maxSize: 2,
			wantLen: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.maxSize).Decode(strings.NewReader(tt.body))

			if tt.wantReason != "" {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Reason != tt.wantReason {
					t.Errorf("expected reason %s, got %s", tt.wantReason, verr.Reason)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Len() != tt.wantLen {
				t.Errorf("expected %d records, got %d", tt.wantLen, b.Len())
			}
		})
	}
}

func TestValidator_ValidateUnknownVariant(t *testing.T) {
	err := New(0).Validate(models.Batch{Variant: "other"})

	if !errors.Is(err, models.ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestValidator_TooLargeWrapsSentinel(t *testing.T) {
	b := models.ScoreBatch(make([]models.ScoreResult, 5))

	err := New(4).Validate(b)

	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
