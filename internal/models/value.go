package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Value is a record metric. Values that are missing or not numeric decode to NaN
// so a malformed record degrades a single chart point instead of the batch.
type Value float64

// Missing returns the NaN value used for absent metrics.
func Missing() Value {
	return Value(math.NaN())
}

// Float returns v as a float64.
func (v Value) Float() float64 {
	return float64(v)
}

// IsMissing reports whether v is NaN.
func (v Value) IsMissing() bool {
	return math.IsNaN(float64(v))
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value(parseNumber(data))
	return nil
}

// MarshalJSON writes NaN and infinities as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(v))
}

// Text is an opaque record string. Numbers decode to their literal text and
// any other non-string value decodes to the empty string.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	switch {
	case len(data) == 0:
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*t = Text(data)
	}
	return nil
}

// timestampLayouts are tried in order. The prediction API emits naive
// ISO-8601 timestamps, which are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is the completion time of a prediction. A timestamp that cannot be
// parsed decodes to the zero value and has no millisecond representation.
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Millis returns the epoch milliseconds of ts, or NaN when ts is unset.
// Timestamps sent without a zone were read as UTC.
func (ts Timestamp) Millis() float64 {
	if ts.IsZero() {
		return math.NaN()
	}
	return float64(ts.UnixMilli())
}

// UnmarshalJSON accepts ISO-8601 strings (with or without zone) and epoch milliseconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*ts = Timestamp{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		ms := parseNumber(data)
		if !math.IsNaN(ms) && !math.IsInf(ms, 0) {
			ts.Time = time.UnixMilli(int64(ms)).UTC()
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return nil
}

// MarshalJSON writes RFC 3339 or null when unset.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

func parseNumber(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return math.NaN()
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}
