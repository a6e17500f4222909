// Package schema validates batch envelopes before they reach the analytics
// layer. Record contents are not checked: missing or malformed fields are
// tolerated downstream.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"prediction-dashboard-service/internal/models"
)

// Rejection reasons, used as metric labels.
const (
	ReasonMalformed      = "malformed"
	ReasonUnknownVariant = "unknown_variant"
	ReasonMissingRecords = "missing_records"
	ReasonTooLarge       = "too_large"
)

// ErrTooLarge is returned when a batch exceeds the configured size.
var ErrTooLarge = errors.New("batch too large")

// ValidationError describes why an envelope was rejected.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid batch (%s): %v", e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator decodes and checks batch envelopes.
type Validator struct {
	maxBatchSize int
}

// New returns a validator. A maxBatchSize of zero or less disables the size
// check.
func New(maxBatchSize int) *Validator {
	return &Validator{maxBatchSize: maxBatchSize}
}

// Decode reads one envelope from r and validates it.
func (v *Validator) Decode(r io.Reader) (models.Batch, error) {
	var b models.Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return models.Batch{}, classify(err)
	}
	if err := v.Validate(b); err != nil {
		return models.Batch{}, err
	}
	return b, nil
}

// Validate checks an already decoded batch.
func (v *Validator) Validate(b models.Batch) error {
	if !b.Variant.Valid() {
		return &ValidationError{Reason: ReasonUnknownVariant, Err: fmt.Errorf("%w: %q", models.ErrUnknownVariant, b.Variant)}
	}
	if v.maxBatchSize > 0 && b.Len() > v.maxBatchSize {
		return &ValidationError{
			Reason: ReasonTooLarge,
			Err:    fmt.Errorf("%w: %d records, limit %d", ErrTooLarge, b.Len(), v.maxBatchSize),
		}
	}
	log.Debug().
		Str("variant", string(b.Variant)).
		Int("records", b.Len()).
		Msg("Batch validated")
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, models.ErrUnknownVariant):
		return &ValidationError{Reason: ReasonUnknownVariant, Err: err}
	case errors.Is(err, models.ErrMissingRecords):
		return &ValidationError{Reason: ReasonMissingRecords, Err: err}
	default:
		return &ValidationError{Reason: ReasonMalformed, Err: err}
	}
}
