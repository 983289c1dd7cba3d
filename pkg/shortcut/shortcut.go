package shortcut

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultRecoveryLB is the light-key recovery assumed in the distillate.
	DefaultRecoveryLB = 0.99

	// DefaultRefluxFactor is the operating-to-minimum reflux ratio used by
	// the Gilliland step.
	DefaultRefluxFactor = 1.1

	// DefaultTolerance is the absolute θ tolerance of the Underwood solve.
	DefaultTolerance = 1e-10

	// DefaultMaxIterations bounds the Underwood solve.
	DefaultMaxIterations = 200

	// kirkbrideExponent is the exponent of the Kirkbride feed-location
	// correlation.
	kirkbrideExponent = 0.206
)

// DefaultSeeds are the two θ guesses handed to the root finder.
var DefaultSeeds = [2]float64{2.0, 1.5}

// Params tunes the estimates. The zero value uses every default.
type Params struct {
	RecoveryLB    float64    `json:"recovery_lb" toml:"recovery_lb"`
	Seeds         [2]float64 `json:"seeds" toml:"seeds"`
	RefluxFactor  float64    `json:"reflux_factor" toml:"reflux_factor"`
	Tolerance     float64    `json:"tolerance" toml:"tolerance"`
	MaxIterations int        `json:"max_iterations" toml:"max_iterations"`
}

// ValidateAndSetDefaults fills zero fields and checks ranges.
func (p *Params) ValidateAndSetDefaults() error {
	if p.RecoveryLB == 0 {
		p.RecoveryLB = DefaultRecoveryLB
	}
	if p.Seeds == [2]float64{} {
		p.Seeds = DefaultSeeds
	}
	if p.RefluxFactor == 0 {
		p.RefluxFactor = DefaultRefluxFactor
	}
	if p.Tolerance == 0 {
		p.Tolerance = DefaultTolerance
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = DefaultMaxIterations
	}

	if p.RecoveryLB <= 0.5 || p.RecoveryLB >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "recovery_lb must lie in (0.5, 1), got %v", p.RecoveryLB)
	}
	if !(p.RefluxFactor > 1) {
		return errors.New(errors.ErrCodeInvalidInput, "reflux_factor must exceed 1, got %v", p.RefluxFactor)
	}
	return nil
}

// =============================================================================
// Estimates
// =============================================================================

// Input is the data the estimates are computed from.
type Input struct {
	Partition *column.Partition

	// FeedFlow overrides Partition.FeedFlow when positive (kmol/h).
	FeedFlow float64
}

func (in Input) feedFlow() float64 {
	if in.FeedFlow > 0 {
		return in.FeedFlow
	}
	return in.Partition.FeedFlow
}

// Estimate is the full set of shortcut results.
type Estimate struct {
	MinimumStages  int     `json:"minimum_stages"`
	Theta          float64 `json:"theta"`
	MinimumReflux  float64 `json:"minimum_reflux"`
	ActualStages   int     `json:"actual_stages"`
	FeedStage      int     `json:"feed_stage"`
	DistillateRate float64 `json:"distillate_rate"` // kmol/h
}

// Compute runs every estimate in order. Underwood failures come back coded
// ROOT_NOT_BRACKETED or NUMERICAL; they mean the K-value data cannot support
// a design and are not meant to be retried.
func Compute(in Input, p Params) (*Estimate, error) {
	if in.Partition == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "shortcut: partition is required")
	}
	if err := p.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	nmin, err := MinimumStages(in.Partition, p.RecoveryLB)
	if err != nil {
		return nil, err
	}
	theta, err := Theta(in.Partition, p)
	if err != nil {
		return nil, err
	}
	rmin := MinimumReflux(in, p.RecoveryLB, theta)
	n, err := ActualStages(nmin, rmin, p.RefluxFactor)
	if err != nil {
		return nil, err
	}
	feed, err := FeedStage(in, p.RecoveryLB, n)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		MinimumStages:  nmin,
		Theta:          theta,
		MinimumReflux:  rmin,
		ActualStages:   n,
		FeedStage:      feed,
		DistillateRate: DistillateRate(in, p.RecoveryLB),
	}, nil
}

// MinimumStages is the Fenske estimate for a light key recovered to the
// distillate, and a heavy key recovered to the bottoms, at fraction rec each.
// It rounds up and never returns less than one stage.
func MinimumStages(p *column.Partition, rec float64) (int, error) {
	alpha := p.RelativeVolatility(p.LightKey)
	if !(alpha > 1) {
		return 0, errors.New(errors.ErrCodeNumerical, "light key %s is not more volatile than %s (α = %v)", p.LightKey, p.HeavyKey, alpha)
	}
	split := rec / (1 - rec)
	n := math.Ceil(math.Log(split*split) / math.Log(alpha))
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New(errors.ErrCodeNumerical, "Fenske estimate undefined for recovery %v", rec)
	}
	return max(int(n), 1), nil
}

// underwood returns Σ αᵢcᵢ/(αᵢ−θ) over the components for the given
// per-component fractions.
func underwood(p *column.Partition, frac func(column.Component) float64) func(float64) float64 {
	return func(theta float64) float64 {
		var sum float64
		for _, c := range p.Components {
			a := p.RelativeVolatility(c.Name)
			sum += a * frac(c) / (a - theta)
		}
		return sum
	}
}

// Theta solves the first Underwood equation for a saturated-liquid feed,
// seeded with p.Seeds.
func Theta(part *column.Partition, p Params) (float64, error) {
	if err := p.ValidateAndSetDefaults(); err != nil {
		return 0, err
	}
	f := underwood(part, func(c column.Component) float64 { return c.FeedFraction })
	lo, hi := min(p.Seeds[0], p.Seeds[1]), max(p.Seeds[0], p.Seeds[1])

	theta, err := Brent(f, lo, hi, p.Tolerance, p.MaxIterations)
	switch {
	case err == ErrNotBracketed:
		return 0, errors.Wrap(errors.ErrCodeRootNotBracketed, err, "underwood θ seeds %v and %v", lo, hi)
	case err != nil:
		return 0, errors.Wrap(errors.ErrCodeNumerical, err, "underwood θ")
	}

	// A sign change across a pole looks like a root to the bracket test.
	var scale float64
	for _, c := range part.Components {
		scale += part.RelativeVolatility(c.Name) * c.FeedFraction
	}
	if r := f(theta); math.IsNaN(r) || math.Abs(r) > 1e-6*(1+scale) {
		return 0, errors.New(errors.ErrCodeNumerical, "underwood θ = %v lands on a pole (residual %v)", theta, r)
	}
	return theta, nil
}

// distillateFlows applies the non-key assumption: every light non-key in the
// distillate, rec of the light key, 1−rec of the heavy key and no heavy
// non-key.
func distillateFlows(in Input, rec float64) map[string]float64 {
	F := in.feedFlow()
	flows := make(map[string]float64, len(in.Partition.Components))
	for _, c := range in.Partition.Components {
		fed := c.FeedFraction * F
		switch c.Role {
		case column.LightNonKey:
			flows[c.Name] = fed
		case column.LightKey:
			flows[c.Name] = rec * fed
		case column.HeavyKey:
			flows[c.Name] = (1 - rec) * fed
		default:
			flows[c.Name] = 0
		}
	}
	return flows
}

// DistillateRate is the total distillate flow under the non-key assumption.
func DistillateRate(in Input, rec float64) float64 {
	return floats.Sum(slices.Collect(maps.Values(distillateFlows(in, rec))))
}

// MinimumReflux evaluates Σ αᵢx_D,ᵢ/(αᵢ−θ) − 1 with the assumed distillate
// composition. See the package documentation for what this number is.
func MinimumReflux(in Input, rec, theta float64) float64 {
	flows := distillateFlows(in, rec)
	d := DistillateRate(in, rec)
	if d <= 0 {
		return math.NaN()
	}
	f := underwood(in.Partition, func(c column.Component) float64 { return flows[c.Name] / d })
	return f(theta) - 1
}

// ActualStages applies the Gilliland correlation at factor × rmin and rounds
// up.
func ActualStages(nmin int, rmin, factor float64) (int, error) {
	psi := (factor - 1) * rmin / (factor*rmin + 1)
	if !(psi > 0 && psi < 1) {
		return 0, errors.New(errors.ErrCodeNumerical, "gilliland abscissa %v outside (0, 1) for Rmin = %v", psi, rmin)
	}
	rhs := 1 - math.Exp(((1+54.5*psi)*(psi-1))/((11+117.2*psi)*math.Sqrt(psi)))
	n := math.Ceil((float64(nmin) + rhs) / (1 - rhs))
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New(errors.ErrCodeNumerical, "gilliland estimate undefined")
	}
	return int(n), nil
}

// FeedStage splits n stages with the Kirkbride correlation and returns the
// number of rectifying stages, which is used as the feed stage.
func FeedStage(in Input, rec float64, n int) (int, error) {
	part := in.Partition
	lk, _ := part.Component(part.LightKey)
	hk, _ := part.Component(part.HeavyKey)

	F := in.feedFlow()
	d := DistillateRate(in, rec)
	b := F - d
	if !(d > 0 && b > 0) || lk.FeedFraction <= 0 {
		return 0, errors.New(errors.ErrCodeNumerical, "kirkbride split undefined for D = %v, B = %v", d, b)
	}

	xHD := (1 - rec) * hk.FeedFraction * F / d
	xLB := (1 - rec) * lk.FeedFraction * F / b
	ratio := math.Exp(kirkbrideExponent * math.Log((b/d)*(hk.FeedFraction/lk.FeedFraction)*(xLB/xHD)*(xLB/xHD)))
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, errors.New(errors.ErrCodeNumerical, "kirkbride ratio undefined")
	}

	ns := int(math.Floor(float64(n) / (1 + ratio)))
	return n - ns, nil
}
