package analysis

import (
	"encoding/json"
	"math"
)

// Sample is a measurement cell that is either a real value or explicitly
// missing. Missing cells stay missing through every derived table; they are
// never substituted with zero or infinity.
type Sample struct {
	Value float64
	Valid bool
}

// Value wraps a finite float as a valid sample. NaN and Inf collapse to
// no-data so they cannot leak into derived tables.
func Value(v float64) Sample {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Sample{}
	}
	return Sample{Value: v, Valid: true}
}

// NoData returns the missing-value marker.
func NoData() Sample { return Sample{} }

// MarshalJSON renders a missing sample as null rather than a fabricated zero.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts null or a number.
func (s *Sample) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Sample{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Value(v)
	return nil
}
