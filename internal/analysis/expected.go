package analysis

// DefaultReferenceIrradiance is the STC irradiance, W/m².
const DefaultReferenceIrradiance = 1000.0

// Estimator maps an irradiance reading to the expected per-string current,
// scaling the module model's STC current linearly by the irradiance fraction.
type Estimator struct {
	Model               ModuleModel
	ReferenceIrradiance float64
}

// NewEstimator builds an estimator. A non-positive reference falls back to
// the STC value of 1000 W/m².
func NewEstimator(model ModuleModel, referenceIrradiance float64) Estimator {
	if referenceIrradiance <= 0 {
		referenceIrradiance = DefaultReferenceIrradiance
	}
	return Estimator{Model: model, ReferenceIrradiance: referenceIrradiance}
}

// Expected returns the irradiance-scaled string current. A missing irradiance
// stays missing: zero irradiance at night and a dead pyranometer are different
// things and must not be conflated. Small negative readings are sensor noise
// and clamp to zero.
func (e Estimator) Expected(irradiance Sample) Sample {
	if !irradiance.Valid {
		return NoData()
	}
	irr := irradiance.Value
	if irr < 0 {
		irr = 0
	}
	return Value(e.Model.STCCurrent * irr / e.ReferenceIrradiance)
}
