package analysis

import (
	"sort"
	"time"
)

// Default diagnosis thresholds, matching the site's operating practice.
const (
	DefaultLowCRThreshold     = 0.90
	DefaultDutyCycleThreshold = 0.30
)

// DiagnoseOptions tunes the weak-string reducer. LowCR is the ratio below
// which a sample counts as underperforming; DutyCycle is the fraction of a
// day's valid samples that must be low before the string is flagged.
type DiagnoseOptions struct {
	LowCR     float64
	DutyCycle float64
	Location  *time.Location // calendar-day bucketing; nil means time.Local
}

// DailyDiagnostic lists the strings flagged weak on one calendar date.
type DailyDiagnostic struct {
	Date        time.Time `json:"date"`         // midnight in the diagnosis location
	WeakStrings []int     `json:"weak_strings"` // 1-based string ids, ascending
}

// Diagnose reduces the CR matrix to one record per calendar date. A string
// with zero valid samples on a date is never flagged: absence of data is not
// evidence of underperformance. An empty matrix yields an empty slice.
func Diagnose(m Matrix, opts DiagnoseOptions) []DailyDiagnostic {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		valid []int
		low   []int
	}
	buckets := make(map[time.Time]*bucket)
	for _, row := range m.Rows {
		day := midnight(row.Timestamp.In(loc))
		b := buckets[day]
		if b == nil {
			b = &bucket{valid: make([]int, m.NumStrings), low: make([]int, m.NumStrings)}
			buckets[day] = b
		}
		for i, cr := range row.Ratios {
			if !cr.Valid {
				continue
			}
			b.valid[i]++
			if cr.Value < opts.LowCR {
				b.low[i]++
			}
		}
	}

	out := make([]DailyDiagnostic, 0, len(buckets))
	for day, b := range buckets {
		d := DailyDiagnostic{Date: day, WeakStrings: []int{}}
		for i := 0; i < m.NumStrings; i++ {
			if b.valid[i] == 0 {
				continue
			}
			fraction := float64(b.low[i]) / float64(b.valid[i])
			if fraction > opts.DutyCycle {
				d.WeakStrings = append(d.WeakStrings, i+1)
			}
		}
		sort.Ints(d.WeakStrings)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
