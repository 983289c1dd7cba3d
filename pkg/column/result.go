package column

import (
	"maps"
	"slices"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Stage holds the converged state of one equilibrium stage.
type Stage struct {
	Temperature      float64 `json:"temperature"`        // °C
	Pressure         float64 `json:"pressure"`           // bar
	LiquidMW         float64 `json:"liquid_mw"`          // kg/kmol
	VaporMW          float64 `json:"vapor_mw"`           // kg/kmol
	LiquidDensity    float64 `json:"liquid_density"`     // kg/m³
	VaporDensity     float64 `json:"vapor_density"`      // kg/m³
	LiquidFlow       float64 `json:"liquid_flow"`        // kmol/h leaving the stage
	VaporFlow        float64 `json:"vapor_flow"`         // kmol/h leaving the stage
	LiquidVolumeFlow float64 `json:"liquid_volume_flow"` // m³/s
	VaporVolumeFlow  float64 `json:"vapor_volume_flow"`  // m³/s
}

// Stream is a material stream entering or leaving the column.
type Stream struct {
	Flow        float64            `json:"flow"`               // kmol/h
	Pressure    float64            `json:"pressure,omitempty"` // bar
	Composition map[string]float64 `json:"composition"`        // mole fractions
}

// ComponentFlow returns the molar flow (kmol/h) of one component.
func (s Stream) ComponentFlow(name string) float64 {
	return s.Flow * s.Composition[name]
}

// TrayGeometry is the tray sizing reported by the simulator for one section.
type TrayGeometry struct {
	Area          float64 `json:"area"`           // total cross-section, m²
	DowncomerArea float64 `json:"downcomer_area"` // one downcomer, m²
	WeirLength    float64 `json:"weir_length"`    // m
	Diameter      float64 `json:"diameter"`       // m
}

// SimulationResult is the output of one converged simulator run.
type SimulationResult struct {
	Stages        []Stage            `json:"stages"`
	CondenserDuty float64            `json:"condenser_duty"` // cal/s, negative when heat is removed
	ReboilerDuty  float64            `json:"reboiler_duty"`  // cal/s
	Feed          Stream             `json:"feed"`
	Distillate    Stream             `json:"distillate"`
	Bottoms       Stream             `json:"bottoms"`
	KValues       map[string]float64 `json:"k_values"` // at the feed stage
	Top           TrayGeometry       `json:"top"`
	Bottom        TrayGeometry       `json:"bottom"`
}

// StageCount returns the number of stages in the result.
func (r *SimulationResult) StageCount() int {
	return len(r.Stages)
}

// Stage returns stage i using the 1-based numbering of the column.
func (r *SimulationResult) Stage(i int) (Stage, error) {
	if i < 1 || i > len(r.Stages) {
		return Stage{}, errors.New(errors.ErrCodeNumerical, "stage %d outside 1..%d", i, len(r.Stages))
	}
	return r.Stages[i-1], nil
}

// Pressures returns the stage pressures in stage order.
func (r *SimulationResult) Pressures() []float64 {
	out := make([]float64, len(r.Stages))
	for i, s := range r.Stages {
		out[i] = s.Pressure
	}
	return out
}

// Components returns the component names known to the result, sorted.
func (r *SimulationResult) Components() []string {
	return slices.Sorted(maps.Keys(r.KValues))
}

// Clone returns a deep copy.
func (r *SimulationResult) Clone() *SimulationResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Stages = slices.Clone(r.Stages)
	c.Feed = r.Feed.clone()
	c.Distillate = r.Distillate.clone()
	c.Bottoms = r.Bottoms.clone()
	c.KValues = maps.Clone(r.KValues)
	return &c
}

func (s Stream) clone() Stream {
	s.Composition = maps.Clone(s.Composition)
	return s
}

// Check verifies that the result is consistent with the configuration it was
// produced from.
func (r *SimulationResult) Check(cfg Configuration) error {
	if r == nil {
		return errors.New(errors.ErrCodeSimulationFailed, "simulator returned no result")
	}
	if len(r.Stages) != cfg.Stages {
		return errors.New(errors.ErrCodeSimulationFailed, "simulator returned %d stages, configuration has %d", len(r.Stages), cfg.Stages)
	}
	if len(r.KValues) == 0 {
		return errors.New(errors.ErrCodeSimulationFailed, "simulator returned no K-values")
	}
	return nil
}
