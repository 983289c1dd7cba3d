package optimizer

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
)

// Range is a closed interval.
type Range struct {
	Lower float64 `json:"lower" toml:"lower"`
	Upper float64 `json:"upper" toml:"upper"`
}

// Specs are the product and feed requirements every design must meet.
type Specs struct {
	// Main is the light-key component whose purity and recovery are
	// specified.
	Main     string `json:"main" toml:"main"`
	Purity   Range  `json:"purity" toml:"purity"`
	Recovery Range  `json:"recovery" toml:"recovery"`

	// FeedPressure is the upstream pressure of the feed (bar). The feed
	// stage must not operate above it.
	FeedPressure float64 `json:"feed_pressure" toml:"feed_pressure"`
}

// Validate checks the specs.
func (s Specs) Validate() error {
	if err := errors.ValidateComponentName(s.Main); err != nil {
		return err
	}
	for name, r := range map[string]Range{"purity": s.Purity, "recovery": s.Recovery} {
		if err := errors.ValidateFraction(name+".lower", r.Lower); err != nil {
			return err
		}
		if err := errors.ValidateFraction(name+".upper", r.Upper); err != nil {
			return err
		}
		if err := errors.ValidateRange(name, r.Lower, r.Upper); err != nil {
			return err
		}
	}
	return errors.ValidatePositive("feed_pressure", s.FeedPressure)
}

// Scales divide margins whose magnitude would otherwise dominate the
// merit function.
type Scales struct {
	Residence float64 `json:"residence" toml:"residence"` // s
	SlotSeal  float64 `json:"slot_seal" toml:"slot_seal"` // mm
}

// Default constraint scales.
const (
	DefaultResidenceScale = 10
	DefaultSlotSealScale  = 10
)

// SetDefaults fills zero scales.
func (s *Scales) SetDefaults() {
	if s.Residence == 0 {
		s.Residence = DefaultResidenceScale
	}
	if s.SlotSeal == 0 {
		s.SlotSeal = DefaultSlotSealScale
	}
}

// Constraint names outside the hydraulic margins.
const (
	ConstraintPurityLower   = "purity_lower"
	ConstraintPurityUpper   = "purity_upper"
	ConstraintRecoveryLower = "recovery_lower"
	ConstraintRecoveryUpper = "recovery_upper"
	ConstraintFeedPressure  = "feed_pressure"
)

// ConstraintSet evaluates the inequality constraints of one mode. Every
// value is "≥ 0 passes".
type ConstraintSet struct {
	specs      Specs
	scales     Scales
	hydraulics bool
	tray       column.TrayType
	names      []string
}

// NewConstraintSet builds the constraint list. Hydraulic margins of both
// sections are appended, in [hydraulics.Margins.Named] order, when
// withHydraulics is set.
func NewConstraintSet(specs Specs, scales Scales, withHydraulics bool, tray column.TrayType) (*ConstraintSet, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	scales.SetDefaults()
	s := &ConstraintSet{specs: specs, scales: scales, hydraulics: withHydraulics, tray: tray}
	s.names = []string{
		ConstraintPurityLower, ConstraintPurityUpper,
		ConstraintRecoveryLower, ConstraintRecoveryUpper,
		ConstraintFeedPressure,
	}
	if withHydraulics {
		for _, section := range []string{"top", "bottom"} {
			for _, n := range (hydraulics.Margins{}).Named(tray) {
				s.names = append(s.names, section+"."+n.Name)
			}
		}
	}
	return s, nil
}

// Names lists the constraints in evaluation order.
func (s *ConstraintSet) Names() []string { return s.names }

// Len is the number of constraints.
func (s *ConstraintSet) Len() int { return len(s.names) }

// Specs returns the product specs.
func (s *ConstraintSet) Specs() Specs { return s.specs }

// Evaluate returns every constraint value for a simulated design. m may be
// nil when hydraulics are not constrained.
func (s *ConstraintSet) Evaluate(cfg column.Configuration, res *column.SimulationResult, m *hydraulics.Metrics) ([]float64, error) {
	part, err := column.NewPartition(res, s.specs.Main)
	if err != nil {
		return nil, err
	}
	feedStage, err := res.Stage(cfg.FeedStage)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(s.names))
	out = append(out,
		part.Purity-s.specs.Purity.Lower,
		s.specs.Purity.Upper-part.Purity,
		part.Recovery-s.specs.Recovery.Lower,
		s.specs.Recovery.Upper-part.Recovery,
		s.specs.FeedPressure-feedStage.Pressure,
	)
	if s.hydraulics {
		if m == nil {
			return nil, errors.New(errors.ErrCodeInternal, "hydraulic constraints need metrics")
		}
		for _, sec := range m.Sections() {
			for _, n := range sec.Margins.Named(s.tray) {
				out = append(out, n.Value/s.scale(n.Name))
			}
		}
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeNumerical, "constraint %s is %v", s.names[i], v)
		}
	}
	return out, nil
}

func (s *ConstraintSet) scale(margin string) float64 {
	switch margin {
	case hydraulics.MarginResidence:
		return s.scales.Residence
	case hydraulics.MarginSlotSealLower, hydraulics.MarginSlotSealUpper:
		return s.scales.SlotSeal
	}
	return 1
}

// Violation returns the largest shortfall below zero, or 0 when every
// constraint passes.
func Violation(c []float64) float64 {
	var v float64
	for _, x := range c {
		v = math.Max(v, -x)
	}
	return v
}
