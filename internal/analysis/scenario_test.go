package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full pipeline over a small two-string day: model, estimator, matrix and
// daily diagnosis together.
func TestWeakStringPipeline(t *testing.T) {
	model, err := NewModuleModel(ModuleSpec{RatedPowerWp: 545, OpenCircuitV: 49.91, VoltageRatio: 0.82})
	require.NoError(t, err)
	est := NewEstimator(model, 1000)

	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	series := Series{
		{Timestamp: base, Irradiance: Value(1000), Currents: []Sample{Value(13.3), Value(13.3)}},
		{Timestamp: base.Add(time.Hour), Irradiance: Value(500), Currents: []Sample{Value(6.0), Value(3.0)}},
		{Timestamp: base.Add(9 * time.Hour), Irradiance: Value(0), Currents: []Sample{Value(0), Value(0)}},
	}
	require.NoError(t, series.Validate(2))

	m, err := BuildMatrix(series, est, 2)
	require.NoError(t, err)
	require.Len(t, m.Rows, 3)

	assert.InDelta(t, 0.998, m.Rows[0].Ratios[0].Value, 0.001)
	assert.InDelta(t, 0.998, m.Rows[0].Ratios[1].Value, 0.001)
	assert.InDelta(t, 0.901, m.Rows[1].Ratios[0].Value, 0.001)
	assert.InDelta(t, 0.451, m.Rows[1].Ratios[1].Value, 0.001)
	assert.False(t, m.Rows[2].Ratios[0].Valid)
	assert.False(t, m.Rows[2].Ratios[1].Valid)

	diags := Diagnose(m, DiagnoseOptions{LowCR: 0.90, DutyCycle: 0.30, Location: time.UTC})
	require.Len(t, diags, 1)

	// String 1's 0.901 sits above the 0.90 threshold, so its low fraction is
	// 0/2. String 2 is low 1/2 = 0.5 > 0.30 and gets flagged.
	assert.Equal(t, []int{2}, diags[0].WeakStrings)
}
