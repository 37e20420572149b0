package analysis

import "time"

// Row is one timestamp of the CR matrix: a ratio per string plus the
// combiner-level totals used for SCB sanity checks.
type Row struct {
	Timestamp     time.Time
	Ratios        []Sample // index 0 holds string 1
	ExpectedTotal Sample   // num strings × expected per-string current
	MeasuredTotal Sample   // sum of valid measured currents
}

// Matrix is the time × string current-ratio table.
type Matrix struct {
	NumStrings int
	Rows       []Row
}

// BuildMatrix aligns the measured string currents against the expected
// current derived from irradiance, broadcast across all strings. The input
// series is validated first; an empty series yields an empty matrix.
func BuildMatrix(series Series, est Estimator, numStrings int) (Matrix, error) {
	if err := series.Validate(numStrings); err != nil {
		return Matrix{}, err
	}
	m := Matrix{NumStrings: numStrings, Rows: make([]Row, 0, len(series))}
	for _, r := range series {
		expected := est.Expected(r.Irradiance)

		row := Row{Timestamp: r.Timestamp, Ratios: make([]Sample, numStrings)}
		if expected.Valid {
			row.ExpectedTotal = Value(expected.Value * float64(numStrings))
		}

		sum := 0.0
		anyMeasured := false
		for i, measured := range r.Currents {
			if measured.Valid {
				sum += measured.Value
				anyMeasured = true
			}
			row.Ratios[i] = ratio(measured, expected)
		}
		if anyMeasured {
			row.MeasuredTotal = Value(sum)
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// ratio applies the division policy. Anything missing, or an expected current
// of zero, is no-data: at night both sides report no generation and the ratio
// is undefined, and a measured current against zero expected is a sensor
// mismatch to exclude, not an infinity to record. Ratios above the physically
// plausible range are kept exact; clipping is a presentation concern.
func ratio(measured, expected Sample) Sample {
	if !measured.Valid || !expected.Valid {
		return NoData()
	}
	if expected.Value == 0 {
		return NoData()
	}
	return Value(measured.Value / expected.Value)
}
