package analytics

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"prediction-dashboard-service/internal/models"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestRound4(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0.123456, 0.1235},
		{0.12344, 0.1234},
		{0.9, 0.9},
		{1, 1},
		{0, 0},
		{-0.000049, 0},
		{123.45678, 123.4568},
	}

	for _, tt := range tests {
		if got := Round4(tt.in); got != tt.expected {
			t.Errorf("Round4(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestRound4_Idempotent(t *testing.T) {
	for _, v := range []float64{0.123456789, 0.99995, 0.00005, 1.0 / 3.0, 2.0 / 3.0, 0.87654321, 1234.56789} {
		once := Round4(v)
		if twice := Round4(once); twice != once {
			t.Errorf("Round4 not idempotent for %v: %v then %v", v, once, twice)
		}
	}
}

func TestRound4_NaN(t *testing.T) {
	if !math.IsNaN(Round4(math.NaN())) {
		t.Error("expected NaN to pass through")
	}
}

func TestBuildSeries_ScoresRoundedInInputOrder(t *testing.T) {
	batch := models.ScoreBatch([]models.ScoreResult{
		{OutputScore: 0.123456, Timestamp: models.At(t0.Add(2 * time.Minute)), ProcessingTimeMs: 50},
		{OutputScore: 0.98765, Timestamp: models.At(t0), ProcessingTimeMs: 61},
	})

	points, err := BuildSeries(batch, MetricOutputScore)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].X != float64(t0.Add(2*time.Minute).UnixMilli()) {
		t.Errorf("expected first point to keep input order, got x=%v", points[0].X)
	}
	if points[0].Y != 0.1235 {
		t.Errorf("expected y 0.1235, got %v", points[0].Y)
	}
	if points[1].Y != 0.9877 {
		t.Errorf("expected y 0.9877, got %v", points[1].Y)
	}
}

func TestBuildSeries_ProcessingTimeIsRaw(t *testing.T) {
	batch := models.ClassificationBatch([]models.ClassificationResult{
		{Timestamp: models.At(t0), ProcessingTimeMs: 12.345678},
	})

	points, err := BuildSeries(batch, MetricProcessingTime)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if points[0].Y != 12.345678 {
		t.Errorf("expected raw processing time 12.345678, got %v", points[0].Y)
	}
}

func TestBuildSeries_Probabilities(t *testing.T) {
	batch := models.ClassificationBatch([]models.ClassificationResult{{
		Timestamp:         models.At(t0),
		ProbClean:         0.11111,
		ProbMildGibberish: 0.22222,
		ProbNoise:         0.33333,
		ProbWordSalad:     0.44444,
	}})

	tests := []struct {
		metric   Metric
		expected float64
	}{
		{MetricProbClean, 0.1111},
		{MetricProbMildGibberish, 0.2222},
		{MetricProbNoise, 0.3333},
		{MetricProbWordSalad, 0.4444},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			points, err := BuildSeries(batch, tt.metric)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if points[0].Y != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, points[0].Y)
			}
		})
	}
}

func TestBuildSeries_MalformedValuesPropagate(t *testing.T) {
	batch := models.ScoreBatch([]models.ScoreResult{
		{OutputScore: models.Missing(), Timestamp: models.At(t0)},
		{OutputScore: 0.5},
	})

	points, err := BuildSeries(batch, MetricOutputScore)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !math.IsNaN(points[0].Y) {
		t.Errorf("expected NaN y for missing score, got %v", points[0].Y)
	}
	if !math.IsNaN(points[1].X) {
		t.Errorf("expected NaN x for missing timestamp, got %v", points[1].X)
	}
}

func TestBuildSeries_MetricNotApplicable(t *testing.T) {
	_, err := BuildSeries(scoreBatch(0.5), MetricProbNoise)
	if !errors.Is(err, ErrMetricNotApplicable) {
		t.Errorf("expected ErrMetricNotApplicable, got %v", err)
	}

	_, err = BuildSeries(models.ClassificationBatch(labelled("Clean")), MetricOutputScore)
	if !errors.Is(err, ErrMetricNotApplicable) {
		t.Errorf("expected ErrMetricNotApplicable, got %v", err)
	}
}

func TestPoint_JSON(t *testing.T) {
	data, err := json.Marshal([]Point{{X: 1704110400000, Y: 0.5}, {X: math.NaN(), Y: math.NaN()}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	expected := `[{"x":1704110400000,"y":0.5},{"x":null,"y":null}]`
	if string(data) != expected {
		t.Errorf("expected %s, got %s", expected, data)
	}

	var back []Point
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if back[0].Y != 0.5 || !math.IsNaN(back[1].Y) {
		t.Errorf("unexpected decoded points %+v", back)
	}
}
