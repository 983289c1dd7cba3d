package hydraulics

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/correlation"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/units"
)

// capsHeads fills the bubble-cap pressure-drop terms of s. The Bolles charts
// are in imperial units; inputs are converted on the way in and heads are
// converted back to mm.
func capsHeads(s *SectionMetrics, g column.TrayGeometry, cfg column.Configuration, p Params) {
	rhoL, rhoV := s.liquidDensity, s.vaporDensity
	densityRatio := rhoV / (rhoL - rhoV)

	// Dry cap drop through riser, reversal and annulus.
	riser := p.RiserFraction * s.ActiveArea
	riserVelocity := units.MToFt(s.VaporFlow / riser)
	kc := correlation.DryCapCoefficient(p.AnnularRatio)
	s.CapDryDrop = units.MToMM(units.InchToM(kc * densityRatio * riserVelocity * riserVelocity))

	// Slot opening.
	slotArea := units.M2ToSqft(p.SlotAreaFraction * s.ActiveArea)
	slotVelocity := units.M3SecToCfs(s.VaporFlow) / slotArea
	lbL, lbV := units.KgM3ToLbFt3(rhoL), units.KgM3ToLbFt3(rhoV)
	group := slotVelocity * math.Sqrt(lbV/(lbL-lbV))
	s.SlotFraction = correlation.SlotOpening(group)
	slotLoss := s.SlotFraction * p.SlotHeight

	s.SlotSeal = p.WeirHeight - p.SkirtClearance - p.SlotHeight

	// Hydraulic gradient across one pass.
	flowPath := 0.7 * g.Diameter / float64(cfg.Passes)
	clearLiquid := units.MMToM(p.WeirHeight + s.CrestMax)
	liquidVelocity := s.LiquidMass / float64(cfg.Passes) / rhoL / (g.WeirLength * clearLiquid)
	s.Gradient = units.MToMM(p.GradientCoeff * flowPath * liquidVelocity * liquidVelocity / (gravity * clearLiquid))

	s.Aeration = correlation.AerationFactor(s.VaporFlow / s.ActiveArea * math.Sqrt(rhoV))

	s.TotalDrop = s.CapDryDrop + slotLoss + s.Aeration*(s.SlotSeal+s.CrestMax+s.Gradient/2)
}
