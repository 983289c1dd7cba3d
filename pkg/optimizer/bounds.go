package optimizer

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
)

// Atmospheric is the lowest condenser pressure searched (bar).
const Atmospheric = 1.01325

// Limits bound the search region. The zero value uses every default.
type Limits struct {
	CondenserPressure [2]float64 `json:"condenser_pressure" toml:"condenser_pressure"` // bar
	PressureDrop      [2]float64 `json:"pressure_drop" toml:"pressure_drop"`           // bar per stage
	TraySpacing       [2]float64 `json:"tray_spacing" toml:"tray_spacing"`             // m
	StageFraction     [2]float64 `json:"stage_fraction" toml:"stage_fraction"`
	FeedFraction      [2]float64 `json:"feed_fraction" toml:"feed_fraction"`

	// RefluxFactor is the upper reflux bound as a multiple of the minimum
	// reflux.
	RefluxFactor float64 `json:"reflux_factor" toml:"reflux_factor"`
}

// DefaultLimits returns the default search region.
func DefaultLimits() Limits {
	return Limits{
		CondenserPressure: [2]float64{Atmospheric, 10},
		PressureDrop:      [2]float64{1e-4, 0.02},
		TraySpacing:       [2]float64{0.3, 0.9},
		StageFraction:     [2]float64{0.1, 1},
		FeedFraction:      [2]float64{0.04, 0.98},
		RefluxFactor:      1.2,
	}
}

// ValidateAndSetDefaults fills zero ranges and checks the rest.
func (l *Limits) ValidateAndSetDefaults() error {
	d := DefaultLimits()
	for _, p := range []struct {
		name string
		v    *[2]float64
		def  [2]float64
	}{
		{"condenser_pressure", &l.CondenserPressure, d.CondenserPressure},
		{"pressure_drop", &l.PressureDrop, d.PressureDrop},
		{"tray_spacing", &l.TraySpacing, d.TraySpacing},
		{"stage_fraction", &l.StageFraction, d.StageFraction},
		{"feed_fraction", &l.FeedFraction, d.FeedFraction},
	} {
		if *p.v == ([2]float64{}) {
			*p.v = p.def
		}
		if err := errors.ValidateRange(p.name, p.v[0], p.v[1]); err != nil {
			return err
		}
	}
	if l.RefluxFactor == 0 {
		l.RefluxFactor = d.RefluxFactor
	}

	if l.CondenserPressure[0] < Atmospheric {
		return errors.New(errors.ErrCodeInvalidInput, "condenser pressure lower bound %v below atmospheric", l.CondenserPressure[0])
	}
	if !(l.PressureDrop[0] > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "pressure drop lower bound must be positive, got %v", l.PressureDrop[0])
	}
	for name, r := range map[string][2]float64{"stage_fraction": l.StageFraction, "feed_fraction": l.FeedFraction} {
		if r[0] <= 0 || r[1] > 1 {
			return errors.New(errors.ErrCodeInvalidInput, "%s range [%v, %v] must lie within (0, 1]", name, r[0], r[1])
		}
	}
	if !(l.RefluxFactor > 1) {
		return errors.New(errors.ErrCodeInvalidInput, "reflux factor must exceed 1, got %v", l.RefluxFactor)
	}
	return nil
}

// Anchors are the starting values of the search: the base configuration
// corrected by the shortcut estimate.
type Anchors struct {
	CondenserPressure float64
	RectifyingDrop    float64
	StrippingDrop     float64
	TraySpacing       float64

	MinimumReflux float64
	RefluxRatio   float64
	Stages        int
	FeedStage     int
}

// NewAnchors combines the base configuration with a shortcut estimate. The
// starting reflux is the Gilliland design reflux, refluxFactor × Rmin.
func NewAnchors(base column.Configuration, est *shortcut.Estimate, refluxFactor float64, enc Encoding) (Anchors, error) {
	if est == nil {
		return Anchors{}, errors.New(errors.ErrCodeInvalidInput, "shortcut estimate is required")
	}
	if !(est.MinimumReflux > 0) || math.IsInf(est.MinimumReflux, 0) {
		return Anchors{}, errors.New(errors.ErrCodeNumerical, "minimum reflux %v cannot anchor the reflux bounds", est.MinimumReflux)
	}
	n := min(max(est.ActualStages, 3), enc.StageScale)
	f := min(max(est.FeedStage, 2), n-1)
	return Anchors{
		CondenserPressure: base.CondenserPressure,
		RectifyingDrop:    base.Pressure.Rectifying.Drop,
		StrippingDrop:     base.Pressure.Stripping.Drop,
		TraySpacing:       base.TraySpacing,
		MinimumReflux:     est.MinimumReflux,
		RefluxRatio:       refluxFactor * est.MinimumReflux,
		Stages:            n,
		FeedStage:         f,
	}, nil
}

// Bounds is a box on the decision vector.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// Clamp returns a copy of x projected into the box.
func (b Bounds) Clamp(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Min(math.Max(v, b.Lower[i]), b.Upper[i])
	}
	return out
}

// Contains reports whether x lies inside the box.
func (b Bounds) Contains(x []float64) bool {
	for i, v := range x {
		if v < b.Lower[i] || v > b.Upper[i] {
			return false
		}
	}
	return true
}

// toUnit maps x onto [0, 1]ⁿ.
func (b Bounds) toUnit(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, v := range x {
		if w := b.Upper[i] - b.Lower[i]; w > 0 {
			u[i] = (v - b.Lower[i]) / w
		}
	}
	return u
}

// fromUnit maps u back into the box and returns the squared distance of u
// outside [0, 1]ⁿ.
func (b Bounds) fromUnit(u []float64) (x []float64, outside float64) {
	x = make([]float64, len(u))
	for i, v := range u {
		c := math.Min(math.Max(v, 0), 1)
		outside += (v - c) * (v - c)
		x[i] = b.Lower[i] + c*(b.Upper[i]-b.Lower[i])
	}
	return x, outside
}
