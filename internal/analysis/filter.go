package analysis

import (
	"fmt"
	"time"
)

// FilterRange returns the rows with start <= t <= end, order preserved.
// An empty result is not an error; downstream stages handle empty series.
func FilterRange(s Series, start, end time.Time) (Series, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	out := make(Series, 0, len(s))
	for _, r := range s {
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
