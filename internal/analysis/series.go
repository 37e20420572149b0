package analysis

import (
	"fmt"
	"time"
)

// Reading is one row of the input series: a timestamp, the plane-of-array
// irradiance and one measured current per string.
type Reading struct {
	Timestamp  time.Time
	Irradiance Sample
	Currents   []Sample
}

// Series is an ordered sequence of readings for one combiner box.
type Series []Reading

// Validate checks every row against the configured string count and that
// timestamps never decrease. Equal adjacent timestamps are tolerated.
func (s Series) Validate(numStrings int) error {
	var prev time.Time
	for i, r := range s {
		if len(r.Currents) != numStrings {
			return fmt.Errorf("%w: row %d has %d string currents, want %d",
				ErrMalformedSeries, i, len(r.Currents), numStrings)
		}
		if i > 0 && r.Timestamp.Before(prev) {
			return fmt.Errorf("%w: timestamp at row %d (%s) earlier than previous row",
				ErrMalformedSeries, i, r.Timestamp.Format(time.RFC3339))
		}
		prev = r.Timestamp
	}
	return nil
}
