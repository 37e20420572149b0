package analysis

import "fmt"

// ModuleSpec carries the nameplate constants of one PV module.
type ModuleSpec struct {
	RatedPowerWp float64 // rated power at STC, Wp
	OpenCircuitV float64 // open-circuit voltage Voc, V
	VoltageRatio float64 // Vmp/Voc, dimensionless
}

// ModuleModel is the derived electrical model. STCCurrent is the per-module
// (and, for series-connected strings, per-string) current at the reference
// irradiance.
type ModuleModel struct {
	Spec       ModuleSpec
	Vmp        float64
	STCCurrent float64
}

// NewModuleModel derives Vmp and the STC current from the nameplate constants.
func NewModuleModel(spec ModuleSpec) (ModuleModel, error) {
	if spec.RatedPowerWp <= 0 {
		return ModuleModel{}, fmt.Errorf("%w: rated power %g Wp", ErrInvalidModuleSpec, spec.RatedPowerWp)
	}
	if spec.OpenCircuitV <= 0 {
		return ModuleModel{}, fmt.Errorf("%w: open-circuit voltage %g V", ErrInvalidModuleSpec, spec.OpenCircuitV)
	}
	if spec.VoltageRatio <= 0 {
		return ModuleModel{}, fmt.Errorf("%w: Vmp/Voc ratio %g", ErrInvalidModuleSpec, spec.VoltageRatio)
	}
	vmp := spec.OpenCircuitV * spec.VoltageRatio
	return ModuleModel{
		Spec:       spec,
		Vmp:        vmp,
		STCCurrent: spec.RatedPowerWp / vmp,
	}, nil
}
