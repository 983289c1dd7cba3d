// Package surrogate is an offline stand-in for a rigorous column simulator.
//
// The model assumes constant relative volatility, constant molar overflow and
// a saturated-liquid feed:
//
//   - K-values follow Trouton's rule with Clausius–Clapeyron,
//     ln K = 10.6·(1 − Tb/T) − ln(P/1.01325).
//   - The minimum reflux comes from Underwood's equations for the key pair
//     straddling the fixed distillate rate.
//   - The reflux ratio and the efficiency-weighted stage count give the
//     equivalent total-reflux stage count through the inverse Gilliland
//     correlation; the Hengstebeck–Geddes distribution then fixes the
//     product split at the given distillate rate.
//   - Stage temperatures are bubble points of a Fenske-interpolated liquid
//     profile at the stage pressure.
//   - Trays are sized to a fixed flooding fraction with Towler's geometry.
//
// It is good enough to exercise the optimizer and hydraulics end to end, not
// for design.
package surrogate

import (
	"cmp"
	"context"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/correlation"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/units"
)

const (
	troutonCoeff   = 10.6    // ΔS_vap/R
	troutonEntropy = 88.0    // kJ/(kmol·K)
	gasConstant    = 8314.46 // J/(kmol·K)
	atmosphere     = 1.01325 // bar

	rootTol  = 1e-9
	rootIter = 200
)

// Simulator implements [simulator.Simulator] with the surrogate model.
type Simulator struct {
	cfg   Config
	comps []Component // ascending boiling point
}

var _ simulator.Simulator = (*Simulator)(nil)

// New validates cfg and returns a surrogate simulator.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	comps := slices.Clone(cfg.Components)
	slices.SortStableFunc(comps, func(a, b Component) int { return cmp.Compare(a.BoilingPoint, b.BoilingPoint) })
	return &Simulator{cfg: cfg, comps: comps}, nil
}

// Name identifies the model in cache keys.
func (s *Simulator) Name() string { return "surrogate" }

// Config returns the process data with defaults applied.
func (s *Simulator) Config() Config { return s.cfg }

// KValue returns the Trouton K-value of a component with normal boiling point
// tb at temperature t (both K) and pressure p (bar).
func KValue(tb, t, p float64) float64 {
	return math.Exp(troutonCoeff*(1-tb/t)) * atmosphere / p
}

// Simulate runs the column described by cfg.
func (s *Simulator) Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalized()

	m := s.newModel(cfg)
	if err := m.volatilities(); err != nil {
		return nil, err
	}
	if err := m.minimumReflux(); err != nil {
		return nil, err
	}
	if err := m.split(); err != nil {
		return nil, err
	}
	if err := m.profile(); err != nil {
		return nil, err
	}
	return m.result()
}

// model carries one simulation's working state.
type model struct {
	s   *Simulator
	cfg column.Configuration

	n         int
	tb        []float64 // K
	feed      []float64 // kmol/h
	z         []float64
	lnAlpha   []float64
	pressures []float64

	lk, hk int
	rmin   float64
	nmin   float64

	d, b     []float64 // product component flows
	xD, xB   []float64
	D, B     float64
	logShare []float64 // ln b_i up to a constant, for the stage profile

	stages []column.Stage
	x, y   [][]float64
}

func (s *Simulator) newModel(cfg column.Configuration) *model {
	m := &model{s: s, cfg: cfg, n: len(s.comps), pressures: cfg.StagePressures()}
	for _, c := range s.comps {
		m.tb = append(m.tb, units.CelsiusToKelvin(c.BoilingPoint))
		m.feed = append(m.feed, c.FeedFraction*s.cfg.FeedFlow)
		m.z = append(m.z, c.FeedFraction)
	}
	return m
}

// volatilities evaluates α relative to the heaviest component at the feed
// bubble point.
func (m *model) volatilities() error {
	pf := m.pressures[m.cfg.FeedStage-1]
	t, err := m.bubblePoint(m.z, pf)
	if err != nil {
		return err
	}
	ref := m.tb[m.n-1]
	m.lnAlpha = make([]float64, m.n)
	for i, tb := range m.tb {
		m.lnAlpha[i] = troutonCoeff * (ref - tb) / t
	}
	return nil
}

func (m *model) alpha(i int) float64 { return math.Exp(m.lnAlpha[i]) }

// minimumReflux applies Underwood to a sharp split at the fixed distillate
// rate.
func (m *model) minimumReflux() error {
	D := m.s.cfg.Distillate
	sharp := make([]float64, m.n)
	var cum float64
	m.lk = m.n - 2
	for i, f := range m.feed {
		take := math.Min(f, math.Max(D-cum, 0))
		sharp[i] = take
		if cum < D && cum+f >= D {
			m.lk = min(i, m.n-2)
		}
		cum += f
	}
	m.hk = m.lk + 1

	aL, aH := m.alpha(m.lk), m.alpha(m.hk)
	if !(aL > aH) {
		return simulator.NotConverged("key components %s and %s have equal volatility", m.s.comps[m.lk].Name, m.s.comps[m.hk].Name)
	}
	underwood := func(theta float64) float64 {
		var sum float64
		for i := range m.z {
			a := m.alpha(i)
			sum += a * m.z[i] / (a - theta)
		}
		return sum
	}
	eps := 1e-9 * (aL - aH)
	theta, err := shortcut.Brent(underwood, aH+eps, aL-eps, rootTol, rootIter)
	if err != nil {
		return simulator.NotConverged("underwood root between %.4g and %.4g: %v", aH, aL, err)
	}

	var sum float64
	for i, d := range sharp {
		a := m.alpha(i)
		sum += a * (d / D) / (a - theta)
	}
	m.rmin = math.Max(sum-1, 1e-6)
	if m.cfg.RefluxRatio <= m.rmin {
		return simulator.NotConverged("reflux ratio %.4g at or below minimum %.4g", m.cfg.RefluxRatio, m.rmin)
	}
	return nil
}

// split turns the configured stages and reflux into the product split.
func (m *model) split() error {
	cfg := m.cfg
	theoretical := cfg.Efficiency.Rectifying*float64(cfg.FeedStage-2) +
		cfg.Efficiency.Stripping*float64(cfg.Stages-cfg.FeedStage) + 1

	// Feeding away from the Kirkbride location wastes stages.
	F, D := m.s.cfg.FeedFlow, m.s.cfg.Distillate
	ratio := math.Pow((F-D)/D*m.z[m.hk]/m.z[m.lk], 0.206)
	optimal := ratio / (1 + ratio)
	actual := float64(cfg.FeedStage-1) / float64(cfg.Stages)
	effective := theoretical * (1 - math.Abs(actual-optimal))

	R := cfg.RefluxRatio
	X := (R - m.rmin) / (R + 1)
	Y := 1 - math.Exp((1+54.4*X)/(11+117.2*X)*(X-1)/math.Sqrt(X))
	m.nmin = effective - Y*(effective+1)
	if !(m.nmin >= 1) {
		return simulator.NotConverged("%.1f effective stages too few at reflux %.4g (minimum %.4g)", effective, R, m.rmin)
	}

	// Hengstebeck–Geddes: ln(dᵢ/bᵢ) = ln A + Nmin·ln αᵢ, with Σdᵢ = D.
	logit := func(lnA float64, i int) float64 { return lnA + m.nmin*m.lnAlpha[i] }
	h := func(lnA float64) float64 {
		var sum float64
		for i, f := range m.feed {
			sum += f * sigmoid(logit(lnA, i))
		}
		return sum - D
	}
	lo := -50 - m.nmin*m.lnAlpha[0]
	lnA, err := shortcut.Brent(h, lo, 50, rootTol, rootIter)
	if err != nil {
		return simulator.NotConverged("product split at D = %v: %v", D, err)
	}

	m.d, m.b = make([]float64, m.n), make([]float64, m.n)
	m.logShare = make([]float64, m.n)
	for i, f := range m.feed {
		s := logit(lnA, i)
		m.d[i] = f * sigmoid(s)
		m.b[i] = f * sigmoid(-s)
		m.logShare[i] = math.Log(f) - softplus(s)
	}
	m.D, m.B = floats.Sum(m.d), floats.Sum(m.b)
	if !(m.D > 0 && m.B > 0) {
		return simulator.NotConverged("non-physical split D = %v, B = %v", m.D, m.B)
	}
	m.xD = floats.ScaleTo(make([]float64, m.n), 1/m.D, m.d)
	m.xB = floats.ScaleTo(make([]float64, m.n), 1/m.B, m.b)
	return nil
}

// profile fills per-stage compositions, temperatures, flows and densities.
func (m *model) profile() error {
	cfg := m.cfg
	N := cfg.Stages
	R, D, F := cfg.RefluxRatio, m.D, m.s.cfg.FeedFlow
	V := (R + 1) * D

	m.stages = make([]column.Stage, N)
	m.x, m.y = make([][]float64, N), make([][]float64, N)
	for j := 1; j <= N; j++ {
		k := m.nmin * float64(N-j) / float64(N-1)
		w := make([]float64, m.n)
		for i := range w {
			w[i] = m.logShare[i] + k*m.lnAlpha[i]
		}
		x := normalizeLog(w)

		p := m.pressures[j-1]
		t, err := m.bubblePoint(x, p)
		if err != nil {
			return err
		}
		y := make([]float64, m.n)
		for i := range y {
			y[i] = KValue(m.tb[i], t, p) * x[i]
		}
		floats.Scale(1/floats.Sum(y), y)

		st := column.Stage{Temperature: units.KelvinToCelsius(t), Pressure: p}
		switch {
		case j == 1:
			st.LiquidFlow = V
		case j < cfg.FeedStage:
			st.LiquidFlow, st.VaporFlow = R*D, V
		case j < N:
			st.LiquidFlow, st.VaporFlow = R*D+F, V
		default:
			st.LiquidFlow, st.VaporFlow = m.B, V
		}

		var massL, volL float64
		for i, c := range m.s.comps {
			st.LiquidMW += x[i] * c.MW
			st.VaporMW += y[i] * c.MW
			massL += x[i] * c.MW
			volL += x[i] * c.MW / c.LiquidDensity
		}
		st.LiquidDensity = massL / volL
		st.VaporDensity = p * 1e5 * st.VaporMW / (gasConstant * t)
		st.LiquidVolumeFlow = st.LiquidFlow * st.LiquidMW / 3600 / st.LiquidDensity
		st.VaporVolumeFlow = st.VaporFlow * st.VaporMW / 3600 / st.VaporDensity

		m.stages[j-1], m.x[j-1], m.y[j-1] = st, x, y
	}
	return nil
}

func (m *model) result() (*column.SimulationResult, error) {
	cfg := m.cfg
	N := cfg.Stages
	names := make([]string, m.n)
	for i, c := range m.s.comps {
		names[i] = c.Name
	}
	compose := func(v []float64) map[string]float64 {
		out := make(map[string]float64, len(v))
		for i, x := range v {
			out[names[i]] = x
		}
		return out
	}

	latent := func(y []float64) float64 {
		var h float64
		for i := range y {
			h += y[i] * troutonEntropy * m.tb[i]
		}
		return h // kJ/kmol
	}
	V := (cfg.RefluxRatio + 1) * m.D
	condenser := V * latent(m.xD) / 3600 // kW
	reboiler := V * latent(m.y[N-1]) / 3600

	feedStage := m.stages[cfg.FeedStage-1]
	tf := units.CelsiusToKelvin(feedStage.Temperature)
	kv := make(map[string]float64, m.n)
	for i, name := range names {
		kv[name] = KValue(m.tb[i], tf, feedStage.Pressure)
	}

	top, err := m.geometry(m.stages[1])
	if err != nil {
		return nil, err
	}
	bottom, err := m.geometry(m.stages[N-2])
	if err != nil {
		return nil, err
	}

	return &column.SimulationResult{
		Stages:        m.stages,
		CondenserDuty: -units.KWToCalPerSec(condenser),
		ReboilerDuty:  units.KWToCalPerSec(reboiler),
		Feed:          column.Stream{Flow: m.s.cfg.FeedFlow, Pressure: m.s.cfg.FeedPressure, Composition: compose(m.z)},
		Distillate:    column.Stream{Flow: m.D, Pressure: m.pressures[0], Composition: compose(m.xD)},
		Bottoms:       column.Stream{Flow: m.B, Pressure: m.pressures[N-1], Composition: compose(m.xB)},
		KValues:       kv,
		Top:           top,
		Bottom:        bottom,
	}, nil
}

// geometry sizes a tray for the stage's loads at the configured flooding
// fraction.
func (m *model) geometry(st column.Stage) (column.TrayGeometry, error) {
	c := m.s.cfg
	liquid := st.LiquidFlow * st.LiquidMW / 3600
	vapor := st.VaporFlow * st.VaporMW / 3600
	flv := liquid / vapor * math.Sqrt(st.VaporDensity/st.LiquidDensity)
	k1 := correlation.FloodingFactor(m.cfg.TrayType.Chart(), flv, m.cfg.TraySpacing)
	uf := k1 * math.Sqrt((st.LiquidDensity-st.VaporDensity)/st.VaporDensity)
	if !(uf > 0) || math.IsInf(uf, 0) {
		return column.TrayGeometry{}, simulator.NotConverged("flooding velocity %v at F_LV %.3g", uf, flv)
	}

	net := st.VaporVolumeFlow / (c.SizingFlooding * uf)
	area := net / (1 - c.DowncomerFraction)
	diameter := math.Sqrt(4 * area / math.Pi)
	return column.TrayGeometry{
		Area:          area,
		DowncomerArea: c.DowncomerFraction * area,
		WeirLength:    c.WeirFraction * diameter,
		Diameter:      diameter,
	}, nil
}

// bubblePoint solves Σ Kᵢxᵢ = 1 for the temperature in K.
func (m *model) bubblePoint(x []float64, p float64) (float64, error) {
	f := func(t float64) float64 {
		var sum float64
		for i := range x {
			sum += KValue(m.tb[i], t, p) * x[i]
		}
		return sum - 1
	}
	t, err := shortcut.Brent(f, 50, 2000, rootTol, rootIter)
	if err != nil {
		return 0, simulator.NotConverged("bubble point at %.4g bar: %v", p, err)
	}
	return t, nil
}

func sigmoid(s float64) float64 {
	if s >= 0 {
		return 1 / (1 + math.Exp(-s))
	}
	e := math.Exp(s)
	return e / (1 + e)
}

// softplus is ln(1 + eˢ) without overflow.
func softplus(s float64) float64 {
	return math.Max(s, 0) + math.Log1p(math.Exp(-math.Abs(s)))
}

// normalizeLog returns exp(w) scaled to sum to one.
func normalizeLog(w []float64) []float64 {
	top := slices.Max(w)
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = math.Exp(v - top)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
