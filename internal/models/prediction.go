// Package models defines the prediction result records consumed by the dashboard.
package models

import "encoding/json"

// ScoreResult is a Vectara hallucination-evaluation result for an input pair.
type ScoreResult struct {
	PredictionID     Text      `json:"prediction_id"`
	Input1           Text      `json:"input_1"`
	Input2           Text      `json:"input_2"`
	OutputScore      Value     `json:"output_score"`
	Timestamp        Timestamp `json:"timestamp"`
	ProcessingTimeMs Value     `json:"processing_time_ms"`
	Status           Text      `json:"status"`
}

// ClassificationResult is a gibberish-detector result for a single text.
type ClassificationResult struct {
	PredictionID      Text      `json:"prediction_id"`
	InputText         Text      `json:"input_text"`
	PredictedLabel    Text      `json:"predicted_label"`
	ProbClean         Value     `json:"prob_clean"`
	ProbMildGibberish Value     `json:"prob_mild_gibberish"`
	ProbNoise         Value     `json:"prob_noise"`
	ProbWordSalad     Value     `json:"prob_word_salad"`
	Timestamp         Timestamp `json:"timestamp"`
	ProcessingTimeMs  Value     `json:"processing_time_ms"`
	Status            Text      `json:"status"`
}

// UnmarshalJSON leaves numeric fields that are absent from the payload as NaN.
func (r *ScoreResult) UnmarshalJSON(data []byte) error {
	type alias ScoreResult
	a := alias{OutputScore: Missing(), ProcessingTimeMs: Missing()}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = ScoreResult(a)
	return nil
}

// UnmarshalJSON leaves numeric fields that are absent from the payload as NaN.
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	type alias ClassificationResult
	a := alias{
		ProbClean:         Missing(),
		ProbMildGibberish: Missing(),
		ProbNoise:         Missing(),
		ProbWordSalad:     Missing(),
		ProcessingTimeMs:  Missing(),
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = ClassificationResult(a)
	return nil
}
