package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Variant identifies which result schema a batch carries.
type Variant string

const (
	// VariantScore batches hold ScoreResult records.
	VariantScore Variant = "vectara"
	// VariantClassification batches hold ClassificationResult records.
	VariantClassification Variant = "gibberish"
)

// ErrUnknownVariant is returned when a variant tag is not recognised.
var ErrUnknownVariant = errors.New("unknown result variant")

// ParseVariant maps a variant tag (case-insensitive) to a Variant.
// The model names used by the prediction API are accepted as aliases.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vectara", "score":
		return VariantScore, nil
	case "gibberish", "classification":
		return VariantClassification, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantScore || v == VariantClassification
}

// Batch is one ordered snapshot of same-variant records. Only the slice
// matching Variant is read.
type Batch struct {
	Variant         Variant
	Scores          []ScoreResult
	Classifications []ClassificationResult
}

// ScoreBatch builds a batch of score results.
func ScoreBatch(records []ScoreResult) Batch {
	return Batch{Variant: VariantScore, Scores: records}
}

// ClassificationBatch builds a batch of classification results.
func ClassificationBatch(records []ClassificationResult) Batch {
	return Batch{Variant: VariantClassification, Classifications: records}
}

// Len returns the number of records for the batch variant, or 0 when the
// variant is unknown.
func (b Batch) Len() int {
	switch b.Variant {
	case VariantScore:
		return len(b.Scores)
	case VariantClassification:
		return len(b.Classifications)
	default:
		return 0
	}
}

// Empty reports whether the batch has nothing to process.
func (b Batch) Empty() bool {
	return b.Len() == 0
}

// Timestamps returns the record timestamps in batch order.
func (b Batch) Timestamps() []Timestamp {
	out := make([]Timestamp, 0, b.Len())
	switch b.Variant {
	case VariantScore:
		for _, r := range b.Scores {
			out = append(out, r.Timestamp)
		}
	case VariantClassification:
		for _, r := range b.Classifications {
			out = append(out, r.Timestamp)
		}
	}
	return out
}

// ProcessingTimes returns processing_time_ms in batch order.
func (b Batch) ProcessingTimes() []Value {
	out := make([]Value, 0, b.Len())
	switch b.Variant {
	case VariantScore:
		for _, r := range b.Scores {
			out = append(out, r.ProcessingTimeMs)
		}
	case VariantClassification:
		for _, r := range b.Classifications {
			out = append(out, r.ProcessingTimeMs)
		}
	}
	return out
}

// envelope is the wire form of a batch.
type envelope struct {
	Variant string          `json:"variant"`
	Records json.RawMessage `json:"records"`
}

// ErrMissingRecords is returned when a batch envelope has no records field.
var ErrMissingRecords = errors.New("batch has no records array")

// UnmarshalJSON decodes {"variant": ..., "records": [...]}.
func (b *Batch) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	v, err := ParseVariant(env.Variant)
	if err != nil {
		return err
	}
	if len(env.Records) == 0 || string(env.Records) == "null" {
		return ErrMissingRecords
	}
	out := Batch{Variant: v}
	switch v {
	case VariantScore:
		err = json.Unmarshal(env.Records, &out.Scores)
	case VariantClassification:
		err = json.Unmarshal(env.Records, &out.Classifications)
	}
	if err != nil {
		return fmt.Errorf("decode %s records: %w", v, err)
	}
	*b = out
	return nil
}

// MarshalJSON encodes the batch as {"variant": ..., "records": [...]}.
func (b Batch) MarshalJSON() ([]byte, error) {
	var records any = []any{}
	switch b.Variant {
	case VariantScore:
		if b.Scores != nil {
			records = b.Scores
		}
	case VariantClassification:
		if b.Classifications != nil {
			records = b.Classifications
		}
	}
	return json.Marshal(struct {
		Variant Variant `json:"variant"`
		Records any     `json:"records"`
	}{b.Variant, records})
}
