package optimizer

import (
	"strings"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Mode fixes the shape of the decision vector and how it maps onto a
// configuration.
type Mode interface {
	// Name is the mode's identifier as accepted by [ParseMode].
	Name() string

	// Variables names the decision variables in vector order.
	Variables() []string

	// Hydraulics reports whether hydraulic margins are constrained.
	Hydraulics() bool

	// Start returns the initial decision vector.
	Start(a Anchors) []float64

	// Bounds returns the search box.
	Bounds(a Anchors, l Limits) Bounds

	// Configure decodes x into a configuration derived from base.
	Configure(x []float64, base column.Configuration) (column.Configuration, error)

	// Display renders x for progress lines, with the stage fractions
	// decoded to stage numbers.
	Display(x []float64) []float64
}

// Mode names.
const (
	ModeConstPressure = "const-pressure"
	ModeSplitPressure = "split-pressure"
	ModeHydraulics    = "hydraulics"
)

// ParseMode returns the mode with the given name.
func ParseMode(name string, enc Encoding) (Mode, error) {
	enc.SetDefaults()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ModeConstPressure, "const", "constant":
		return ConstPressure{Encoding: enc}, nil
	case ModeSplitPressure, "split":
		return SplitPressure{Encoding: enc}, nil
	case ModeHydraulics, "":
		return Hydraulics{Encoding: enc}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown optimization mode %q (want %s, %s or %s)",
		name, ModeConstPressure, ModeSplitPressure, ModeHydraulics)
}

func checkDim(m Mode, x []float64) error {
	if n := len(m.Variables()); len(x) != n {
		return errors.New(errors.ErrCodeInternal, "%s mode expects %d variables, got %d", m.Name(), n, len(x))
	}
	return nil
}

// =============================================================================
// Constant pressure drop
// =============================================================================

// ConstPressureVector is the decision vector of [ConstPressure].
type ConstPressureVector struct {
	CondenserPressure float64
	PressureDrop      float64
	RefluxRatio       float64
	StageFraction     float64
	FeedFraction      float64
}

// Slice returns v in solver order.
func (v ConstPressureVector) Slice() []float64 {
	return []float64{v.CondenserPressure, v.PressureDrop, v.RefluxRatio, v.StageFraction, v.FeedFraction}
}

// ConstPressure searches with one pressure drop shared by both sections.
type ConstPressure struct{ Encoding Encoding }

func (ConstPressure) Name() string     { return ModeConstPressure }
func (ConstPressure) Hydraulics() bool { return false }

func (ConstPressure) Variables() []string {
	return []string{"Pcond", "dP", "RR", "N", "NF"}
}

// Vector unpacks x.
func (ConstPressure) Vector(x []float64) ConstPressureVector {
	return ConstPressureVector{x[0], x[1], x[2], x[3], x[4]}
}

func (m ConstPressure) Start(a Anchors) []float64 {
	return ConstPressureVector{
		CondenserPressure: a.CondenserPressure,
		PressureDrop:      (a.RectifyingDrop + a.StrippingDrop) / 2,
		RefluxRatio:       a.RefluxRatio,
		StageFraction:     m.Encoding.StageFraction(a.Stages),
		FeedFraction:      m.Encoding.FeedFraction(a.FeedStage),
	}.Slice()
}

func (ConstPressure) Bounds(a Anchors, l Limits) Bounds {
	return Bounds{
		Lower: ConstPressureVector{l.CondenserPressure[0], l.PressureDrop[0], a.MinimumReflux, l.StageFraction[0], l.FeedFraction[0]}.Slice(),
		Upper: ConstPressureVector{l.CondenserPressure[1], l.PressureDrop[1], l.RefluxFactor * a.MinimumReflux, l.StageFraction[1], l.FeedFraction[1]}.Slice(),
	}
}

func (m ConstPressure) Configure(x []float64, base column.Configuration) (column.Configuration, error) {
	if err := checkDim(m, x); err != nil {
		return base, err
	}
	v := m.Vector(x)
	n, f, err := m.Encoding.Decode(v.StageFraction, v.FeedFraction)
	if err != nil {
		return base, err
	}
	cfg := base
	cfg.Stages, cfg.FeedStage = n, f
	cfg.Pressure = column.UniformProfile(n, f, v.PressureDrop)
	cfg.CondenserPressure = v.CondenserPressure
	cfg.RefluxRatio = v.RefluxRatio
	return cfg, nil
}

func (m ConstPressure) Display(x []float64) []float64 {
	v := m.Vector(x)
	v.StageFraction = float64(m.Encoding.Stages(v.StageFraction))
	v.FeedFraction = float64(m.Encoding.Feed(v.FeedFraction))
	return v.Slice()
}

// =============================================================================
// Split pressure drop
// =============================================================================

// SplitPressureVector is the decision vector of [SplitPressure].
type SplitPressureVector struct {
	CondenserPressure float64
	RectifyingDrop    float64
	StrippingDrop     float64
	RefluxRatio       float64
	StageFraction     float64
	FeedFraction      float64
}

// Slice returns v in solver order.
func (v SplitPressureVector) Slice() []float64 {
	return []float64{v.CondenserPressure, v.RectifyingDrop, v.StrippingDrop, v.RefluxRatio, v.StageFraction, v.FeedFraction}
}

// SplitPressure searches with separate rectifying and stripping drops.
type SplitPressure struct{ Encoding Encoding }

func (SplitPressure) Name() string     { return ModeSplitPressure }
func (SplitPressure) Hydraulics() bool { return false }

func (SplitPressure) Variables() []string {
	return []string{"Pcond", "dPr", "dPs", "RR", "N", "NF"}
}

// Vector unpacks x.
func (SplitPressure) Vector(x []float64) SplitPressureVector {
	return SplitPressureVector{x[0], x[1], x[2], x[3], x[4], x[5]}
}

func (m SplitPressure) Start(a Anchors) []float64 {
	return m.start(a).Slice()
}

func (m SplitPressure) start(a Anchors) SplitPressureVector {
	return SplitPressureVector{
		CondenserPressure: a.CondenserPressure,
		RectifyingDrop:    a.RectifyingDrop,
		StrippingDrop:     a.StrippingDrop,
		RefluxRatio:       a.RefluxRatio,
		StageFraction:     m.Encoding.StageFraction(a.Stages),
		FeedFraction:      m.Encoding.FeedFraction(a.FeedStage),
	}
}

func (SplitPressure) Bounds(a Anchors, l Limits) Bounds {
	lo, hi := splitBounds(a, l)
	return Bounds{Lower: lo.Slice(), Upper: hi.Slice()}
}

func splitBounds(a Anchors, l Limits) (lo, hi SplitPressureVector) {
	lo = SplitPressureVector{l.CondenserPressure[0], l.PressureDrop[0], l.PressureDrop[0], a.MinimumReflux, l.StageFraction[0], l.FeedFraction[0]}
	hi = SplitPressureVector{l.CondenserPressure[1], l.PressureDrop[1], l.PressureDrop[1], l.RefluxFactor * a.MinimumReflux, l.StageFraction[1], l.FeedFraction[1]}
	return lo, hi
}

func (m SplitPressure) Configure(x []float64, base column.Configuration) (column.Configuration, error) {
	if err := checkDim(m, x); err != nil {
		return base, err
	}
	return m.Vector(x).apply(m.Encoding, base)
}

func (v SplitPressureVector) apply(enc Encoding, base column.Configuration) (column.Configuration, error) {
	n, f, err := enc.Decode(v.StageFraction, v.FeedFraction)
	if err != nil {
		return base, err
	}
	cfg := base
	cfg.Stages, cfg.FeedStage = n, f
	cfg.Pressure = column.SplitProfile(n, f, v.RectifyingDrop, v.StrippingDrop)
	cfg.CondenserPressure = v.CondenserPressure
	cfg.RefluxRatio = v.RefluxRatio
	return cfg, nil
}

func (m SplitPressure) Display(x []float64) []float64 {
	v := m.Vector(x)
	v.StageFraction = float64(m.Encoding.Stages(v.StageFraction))
	v.FeedFraction = float64(m.Encoding.Feed(v.FeedFraction))
	return v.Slice()
}

// =============================================================================
// Hydraulics
// =============================================================================

// HydraulicsVector is the decision vector of [Hydraulics].
type HydraulicsVector struct {
	SplitPressureVector
	TraySpacing float64
}

// Slice returns v in solver order.
func (v HydraulicsVector) Slice() []float64 {
	return append(v.SplitPressureVector.Slice(), v.TraySpacing)
}

// Hydraulics is [SplitPressure] plus tray spacing, constrained by every
// hydraulic margin of both sections.
type Hydraulics struct{ Encoding Encoding }

func (Hydraulics) Name() string     { return ModeHydraulics }
func (Hydraulics) Hydraulics() bool { return true }

func (Hydraulics) Variables() []string {
	return []string{"Pcond", "dPr", "dPs", "RR", "N", "NF", "spacing"}
}

// Vector unpacks x.
func (Hydraulics) Vector(x []float64) HydraulicsVector {
	return HydraulicsVector{SplitPressure{}.Vector(x[:6]), x[6]}
}

func (m Hydraulics) Start(a Anchors) []float64 {
	return HydraulicsVector{SplitPressure(m).start(a), a.TraySpacing}.Slice()
}

func (Hydraulics) Bounds(a Anchors, l Limits) Bounds {
	lo, hi := splitBounds(a, l)
	return Bounds{
		Lower: HydraulicsVector{lo, l.TraySpacing[0]}.Slice(),
		Upper: HydraulicsVector{hi, l.TraySpacing[1]}.Slice(),
	}
}

func (m Hydraulics) Configure(x []float64, base column.Configuration) (column.Configuration, error) {
	if err := checkDim(m, x); err != nil {
		return base, err
	}
	v := m.Vector(x)
	cfg, err := v.apply(m.Encoding, base)
	if err != nil {
		return base, err
	}
	cfg.TraySpacing = v.TraySpacing
	return cfg, nil
}

func (m Hydraulics) Display(x []float64) []float64 {
	v := m.Vector(x)
	v.StageFraction = float64(m.Encoding.Stages(v.StageFraction))
	v.FeedFraction = float64(m.Encoding.Feed(v.FeedFraction))
	return v.Slice()
}
