package hydraulics

import (
	stderrors "errors"
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/correlation"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// ErrUndefined marks a ratio with a zero or negative denominator. It always
// reaches callers wrapped with the NUMERICAL code.
var ErrUndefined = stderrors.New("hydraulics undefined")

const gravity = 9.81 // m/s²

// Metrics is the hydraulic evaluation of both column sections.
type Metrics struct {
	Top    SectionMetrics `json:"top"`
	Bottom SectionMetrics `json:"bottom"`

	// NetAreaRequired is the larger of the two sections' required net
	// areas (m²).
	NetAreaRequired float64 `json:"net_area_required"`
}

// Sections returns the top and bottom metrics in that order.
func (m *Metrics) Sections() [2]*SectionMetrics {
	return [2]*SectionMetrics{&m.Top, &m.Bottom}
}

// SectionMetrics holds the intermediate quantities and margins of one section.
// Heads are in mm of liquid, areas in m², velocities in m/s.
type SectionMetrics struct {
	Stage int `json:"stage"`

	LiquidMass float64 `json:"liquid_mass"` // kg/s
	VaporMass  float64 `json:"vapor_mass"`  // kg/s
	VaporFlow  float64 `json:"vapor_flow"`  // m³/s

	NetArea    float64 `json:"net_area"`
	ActiveArea float64 `json:"active_area"`
	HoleArea   float64 `json:"hole_area"`

	FlowParameter    float64 `json:"flow_parameter"`
	FloodingVelocity float64 `json:"flooding_velocity"`
	RequiredNetArea  float64 `json:"required_net_area"`
	PercentFlooding  float64 `json:"percent_flooding"` // fraction
	Entrainment      float64 `json:"entrainment"`      // fraction

	CrestMax        float64 `json:"crest_max"`
	CrestMin        float64 `json:"crest_min"`
	WeepVelocity    float64 `json:"weep_velocity"`
	MinHoleVelocity float64 `json:"min_hole_velocity"`

	DryDrop       float64 `json:"dry_drop"`
	ResidualHead  float64 `json:"residual_head"`
	TotalDrop     float64 `json:"total_drop"`
	DowncomerLoss float64 `json:"downcomer_loss"`
	Backup        float64 `json:"backup"`
	BackupLimit   float64 `json:"backup_limit"`
	ResidenceTime float64 `json:"residence_time"` // s

	// Bubble-cap trays only.
	CapDryDrop   float64 `json:"cap_dry_drop,omitempty"`
	SlotFraction float64 `json:"slot_fraction,omitempty"`
	SlotSeal     float64 `json:"slot_seal,omitempty"`
	Gradient     float64 `json:"gradient,omitempty"`
	Aeration     float64 `json:"aeration,omitempty"`

	Margins Margins `json:"margins"`

	liquidDensity, vaporDensity float64
}

// Evaluate computes the hydraulic metrics of the column described by cfg and
// its simulation result res.
func Evaluate(cfg column.Configuration, res *column.SimulationResult, p Params) (*Metrics, error) {
	if err := p.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, undefined("no simulation result")
	}
	if cfg.Stages < 3 {
		return nil, undefined("%d stages leave no interior tray", cfg.Stages)
	}

	topLiquid := cfg.RefluxRatio * res.Distillate.Flow
	loads := [2]struct {
		stage  int
		liquid float64 // kmol/h
		geom   column.TrayGeometry
	}{
		{2, topLiquid, res.Top},
		{cfg.Stages - 1, topLiquid + res.Feed.Flow, res.Bottom},
	}

	m := &Metrics{}
	for i, s := range m.Sections() {
		st, err := res.Stage(loads[i].stage)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNumerical, ErrUndefined, "stage %d: %v", loads[i].stage, err)
		}
		if err := sizeSection(s, loads[i].stage, st, loads[i].liquid, loads[i].geom, cfg, p); err != nil {
			return nil, err
		}
		m.NetAreaRequired = math.Max(m.NetAreaRequired, s.RequiredNetArea)
	}

	for i, s := range m.Sections() {
		s.PercentFlooding = p.SizingFraction * s.RequiredNetArea / m.NetAreaRequired
		if err := checkSection(s, loads[i].geom, cfg, p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// sizeSection fills the flow, area and flooding quantities that do not depend
// on the other section.
func sizeSection(s *SectionMetrics, stage int, st column.Stage, liquid float64, g column.TrayGeometry, cfg column.Configuration, p Params) error {
	s.Stage = stage
	switch {
	case !(st.LiquidDensity > 0), !(st.VaporDensity > 0):
		return undefined("stage %d densities ρL=%v ρV=%v", stage, st.LiquidDensity, st.VaporDensity)
	case st.LiquidDensity <= st.VaporDensity:
		return undefined("stage %d liquid density %v not above vapour density %v", stage, st.LiquidDensity, st.VaporDensity)
	case !(liquid > 0), !(st.VaporFlow > 0), !(st.LiquidMW > 0), !(st.VaporMW > 0):
		return undefined("stage %d flows L=%v V=%v", stage, liquid, st.VaporFlow)
	case !(g.Area > 0), !(g.DowncomerArea > 0), !(g.WeirLength > 0), !(g.Diameter > 0):
		return undefined("stage %d tray geometry %+v", stage, g)
	}

	s.LiquidMass = liquid * st.LiquidMW / 3600
	s.VaporMass = st.VaporFlow * st.VaporMW / 3600
	s.VaporFlow = s.VaporMass / st.VaporDensity

	s.NetArea = g.Area - g.DowncomerArea
	s.ActiveArea = g.Area - 2*g.DowncomerArea
	if s.ActiveArea <= 0 {
		return undefined("stage %d downcomers %v m² leave no active area in %v m²", stage, g.DowncomerArea, g.Area)
	}
	s.HoleArea = p.HoleRatio * s.ActiveArea

	s.FlowParameter = FlowParameter(s.LiquidMass, s.VaporMass, st.LiquidDensity, st.VaporDensity)
	k1 := correlation.FloodingFactor(cfg.TrayType.Chart(), s.FlowParameter, cfg.TraySpacing)
	s.FloodingVelocity = k1 * math.Sqrt((st.LiquidDensity-st.VaporDensity)/st.VaporDensity)
	if !(s.FloodingVelocity > 0) {
		return undefined("stage %d flooding velocity %v at F_LV %v", stage, s.FloodingVelocity, s.FlowParameter)
	}
	s.RequiredNetArea = s.VaporFlow / (p.SizingFraction * s.FloodingVelocity)

	s.liquidDensity, s.vaporDensity = st.LiquidDensity, st.VaporDensity
	return nil
}

// checkSection computes the heads and margins once percent flooding is known.
func checkSection(s *SectionMetrics, g column.TrayGeometry, cfg column.Configuration, p Params) error {
	rhoL, rhoV := s.liquidDensity, s.vaporDensity
	chart := cfg.TrayType.Chart()
	liquidPerPass := s.LiquidMass / float64(cfg.Passes)

	s.Entrainment = correlation.Entrainment(chart, s.FlowParameter, s.PercentFlooding)

	s.CrestMax = CrestHeight(liquidPerPass, rhoL, g.WeirLength)
	s.CrestMin = CrestHeight(p.Turndown*liquidPerPass, rhoL, g.WeirLength)

	k2 := correlation.WeirCorrection(p.WeirHeight + s.CrestMin)
	s.WeepVelocity = (k2 - 0.90*(25.4-p.HoleDiameter)) / math.Sqrt(rhoV)
	s.MinHoleVelocity = p.Turndown * s.VaporFlow / s.HoleArea

	s.ResidualHead = 12.5e3 / rhoL

	apron := math.Min(g.DowncomerArea, (p.WeirHeight-p.ApronClearance)/1000*g.WeirLength)
	qL := liquidPerPass / rhoL

	if cfg.TrayType == column.Caps {
		capsHeads(s, g, cfg, p)
		s.DowncomerLoss = 1000 * math.Pow(qL/(p.DowncomerCd*apron), 2) / (2 * gravity)
		s.BackupLimit = cfg.TraySpacing*1000 + p.WeirHeight
	} else {
		uh := s.VaporFlow / s.HoleArea
		c0 := correlation.Orifice(p.HoleRatio, p.PlateThickness/p.HoleDiameter)
		s.DryDrop = 51 * math.Pow(uh/c0, 2) * rhoV / rhoL
		s.TotalDrop = s.DryDrop + p.WeirHeight + s.CrestMax + s.ResidualHead
		s.DowncomerLoss = 166 * math.Pow(liquidPerPass/(rhoL*apron), 2)
		s.BackupLimit = 0.5 * (cfg.TraySpacing*1000 + p.WeirHeight)
	}

	s.Backup = p.WeirHeight + s.CrestMax + s.TotalDrop + s.DowncomerLoss
	s.ResidenceTime = g.DowncomerArea * (s.Backup / 1000) * rhoL / liquidPerPass

	s.Margins = Margins{
		Weeping:     s.MinHoleVelocity - s.WeepVelocity,
		Entrainment: EntrainmentMargin(s.Entrainment, s.PercentFlooding, p),
		Flooding:    p.DesignFlooding - s.PercentFlooding,
		Backup:      s.BackupLimit - s.Backup,
		Residence:   s.ResidenceTime - p.MinResidence,
	}
	if cfg.TrayType == column.Caps {
		s.Margins.SlotOpening = 1 - s.SlotFraction
		s.Margins.SlotSealLower = s.SlotSeal - p.SealLower
		s.Margins.SlotSealUpper = p.SealUpper - s.SlotSeal
		s.Margins.VaporDistribution = p.MaxVaporDist - s.Gradient/s.CapDryDrop
	}

	if !s.Margins.finite() {
		return undefined("stage %d margins not finite: %+v", s.Stage, s.Margins)
	}
	return nil
}

// FlowParameter returns F_LV = (L/V)·√(ρV/ρL) for mass flows L and V.
func FlowParameter(liquidMass, vaporMass, rhoL, rhoV float64) float64 {
	return liquidMass / vaporMass * math.Sqrt(rhoV/rhoL)
}

// CrestHeight returns the Francis weir crest h_ow (mm) of a liquid mass flow
// (kg/s) over a weir of the given length (m).
func CrestHeight(liquidMass, rhoL, weirLength float64) float64 {
	return 750 * math.Pow(liquidMass/(rhoL*weirLength), 2.0/3.0)
}

// EntrainmentMargin combines the entrainment limit with the flooding
// fraction at which the entrainment chart was read. Operating exactly at the
// design flooding fraction gives a margin of at most zero.
func EntrainmentMargin(entrainment, percentFlooding float64, p Params) float64 {
	return math.Min(p.MaxEntrainment-entrainment, p.DesignFlooding-percentFlooding)
}

func undefined(format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeNumerical, ErrUndefined, format, args...)
}
