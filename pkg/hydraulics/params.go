package hydraulics

import (
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Default design values. Lengths are in millimetres unless noted.
const (
	DefaultWeirHeight       = 50.0
	DefaultHoleDiameter     = 5.0
	DefaultPlateThickness   = 5.0
	DefaultHoleRatio        = 0.10 // hole area / active area
	DefaultTurndown         = 0.7  // minimum / maximum load
	DefaultSizingFraction   = 0.8  // flooding fraction the net area is sized at
	DefaultDesignFlooding   = 0.8
	DefaultMaxEntrainment   = 0.1
	DefaultMinResidence     = 3.0 // s
	DefaultApronClearance   = 10.0
	DefaultSlotHeight       = 25.0
	DefaultSkirtClearance   = 6.0
	DefaultSlotAreaFraction = 0.15 // slot area / active area
	DefaultRiserFraction    = 0.10 // riser area / active area
	DefaultAnnularRatio     = 1.1  // annular area / riser area
	DefaultSealLower        = 12.7
	DefaultSealUpper        = 38.1
	DefaultGradientCoeff    = 1.0
	DefaultMaxVaporDist     = 0.5
	DefaultDowncomerCd      = 0.6
)

// Params holds the tray design choices that the simulator does not report.
// Zero fields take the defaults above.
type Params struct {
	WeirHeight     float64 `json:"weir_height" toml:"weir_height"`
	HoleDiameter   float64 `json:"hole_diameter" toml:"hole_diameter"`
	PlateThickness float64 `json:"plate_thickness" toml:"plate_thickness"`
	HoleRatio      float64 `json:"hole_ratio" toml:"hole_ratio"`
	Turndown       float64 `json:"turndown" toml:"turndown"`
	SizingFraction float64 `json:"sizing_fraction" toml:"sizing_fraction"`
	DesignFlooding float64 `json:"design_flooding" toml:"design_flooding"`
	MaxEntrainment float64 `json:"max_entrainment" toml:"max_entrainment"`
	MinResidence   float64 `json:"min_residence" toml:"min_residence"`
	ApronClearance float64 `json:"apron_clearance" toml:"apron_clearance"`

	// Bubble-cap trays only.
	SlotHeight       float64 `json:"slot_height" toml:"slot_height"`
	SkirtClearance   float64 `json:"skirt_clearance" toml:"skirt_clearance"`
	SlotAreaFraction float64 `json:"slot_area_fraction" toml:"slot_area_fraction"`
	RiserFraction    float64 `json:"riser_fraction" toml:"riser_fraction"`
	AnnularRatio     float64 `json:"annular_ratio" toml:"annular_ratio"`
	SealLower        float64 `json:"seal_lower" toml:"seal_lower"`
	SealUpper        float64 `json:"seal_upper" toml:"seal_upper"`
	GradientCoeff    float64 `json:"gradient_coeff" toml:"gradient_coeff"`
	MaxVaporDist     float64 `json:"max_vapor_distribution" toml:"max_vapor_distribution"`
	DowncomerCd      float64 `json:"downcomer_cd" toml:"downcomer_cd"`
}

// DefaultParams returns Params with every default applied.
func DefaultParams() Params {
	var p Params
	p.SetDefaults()
	return p
}

// SetDefaults fills zero fields.
func (p *Params) SetDefaults() {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	def(&p.WeirHeight, DefaultWeirHeight)
	def(&p.HoleDiameter, DefaultHoleDiameter)
	def(&p.PlateThickness, DefaultPlateThickness)
	def(&p.HoleRatio, DefaultHoleRatio)
	def(&p.Turndown, DefaultTurndown)
	def(&p.SizingFraction, DefaultSizingFraction)
	def(&p.DesignFlooding, DefaultDesignFlooding)
	def(&p.MaxEntrainment, DefaultMaxEntrainment)
	def(&p.MinResidence, DefaultMinResidence)
	def(&p.ApronClearance, DefaultApronClearance)
	def(&p.SlotHeight, DefaultSlotHeight)
	def(&p.SkirtClearance, DefaultSkirtClearance)
	def(&p.SlotAreaFraction, DefaultSlotAreaFraction)
	def(&p.RiserFraction, DefaultRiserFraction)
	def(&p.AnnularRatio, DefaultAnnularRatio)
	def(&p.SealLower, DefaultSealLower)
	def(&p.SealUpper, DefaultSealUpper)
	def(&p.GradientCoeff, DefaultGradientCoeff)
	def(&p.MaxVaporDist, DefaultMaxVaporDist)
	def(&p.DowncomerCd, DefaultDowncomerCd)
}

// ValidateAndSetDefaults fills zero fields and checks that every value is
// physically meaningful.
func (p *Params) ValidateAndSetDefaults() error {
	p.SetDefaults()
	for name, v := range map[string]float64{
		"weir_height":     p.WeirHeight,
		"hole_diameter":   p.HoleDiameter,
		"plate_thickness": p.PlateThickness,
		"min_residence":   p.MinResidence,
		"slot_height":     p.SlotHeight,
		"annular_ratio":   p.AnnularRatio,
		"gradient_coeff":  p.GradientCoeff,
	} {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	for name, v := range map[string]float64{
		"hole_ratio":         p.HoleRatio,
		"turndown":           p.Turndown,
		"sizing_fraction":    p.SizingFraction,
		"design_flooding":    p.DesignFlooding,
		"max_entrainment":    p.MaxEntrainment,
		"slot_area_fraction": p.SlotAreaFraction,
		"riser_fraction":     p.RiserFraction,
		"downcomer_cd":       p.DowncomerCd,
	} {
		if err := errors.ValidateFraction(name, v); err != nil {
			return err
		}
	}
	if p.ApronClearance >= p.WeirHeight {
		return errors.New(errors.ErrCodeInvalidInput, "apron clearance %v mm must be below weir height %v mm", p.ApronClearance, p.WeirHeight)
	}
	if p.SealLower >= p.SealUpper {
		return errors.New(errors.ErrCodeInvalidInput, "slot seal bounds [%v, %v] are empty", p.SealLower, p.SealUpper)
	}
	return nil
}
