package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Solver defaults.
const (
	DefaultTolerance           = 0.01
	DefaultConstraintTolerance = 1e-4
	DefaultMaxIterations  = 2000
	DefaultMaxOuter       = 25
	DefaultInitialPenalty = 10
	DefaultPenaltyGrowth  = 10
	DefaultMaxPenalty     = 1e6
	DefaultSimplexSize    = 0.1
	DefaultBoxPenalty     = 1e3
)

// Settings tune the augmented-Lagrangian solver. The zero value uses every
// default.
type Settings struct {
	// Tolerance is the convergence tolerance on the objective (TAC/1e6).
	Tolerance float64 `json:"tolerance" toml:"tolerance"`

	// ConstraintTolerance is the largest constraint shortfall a feasible
	// design may have. Constraints are dimensionless margins, so it is much
	// tighter than Tolerance.
	ConstraintTolerance float64 `json:"constraint_tolerance" toml:"constraint_tolerance"`

	// MaxIterations caps solver iterations over the whole run.
	MaxIterations int `json:"max_iterations" toml:"max_iterations"`

	// MaxOuter caps multiplier updates.
	MaxOuter int `json:"max_outer" toml:"max_outer"`

	InitialPenalty float64 `json:"initial_penalty" toml:"initial_penalty"`
	PenaltyGrowth  float64 `json:"penalty_growth" toml:"penalty_growth"`
	MaxPenalty     float64 `json:"max_penalty" toml:"max_penalty"`

	// SimplexSize is the initial Nelder–Mead simplex edge on the unit box.
	SimplexSize float64 `json:"simplex_size" toml:"simplex_size"`

	// BoxPenalty weighs the squared distance of a trial outside the box.
	BoxPenalty float64 `json:"box_penalty" toml:"box_penalty"`
}

// ValidateAndSetDefaults fills zero fields and checks the rest.
func (s *Settings) ValidateAndSetDefaults() error {
	if s.Tolerance == 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.ConstraintTolerance == 0 {
		s.ConstraintTolerance = DefaultConstraintTolerance
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.MaxOuter == 0 {
		s.MaxOuter = DefaultMaxOuter
	}
	if s.InitialPenalty == 0 {
		s.InitialPenalty = DefaultInitialPenalty
	}
	if s.PenaltyGrowth == 0 {
		s.PenaltyGrowth = DefaultPenaltyGrowth
	}
	if s.MaxPenalty == 0 {
		s.MaxPenalty = DefaultMaxPenalty
	}
	if s.SimplexSize == 0 {
		s.SimplexSize = DefaultSimplexSize
	}
	if s.BoxPenalty == 0 {
		s.BoxPenalty = DefaultBoxPenalty
	}

	for name, v := range map[string]float64{
		"tolerance":            s.Tolerance,
		"constraint_tolerance": s.ConstraintTolerance,
		"initial_penalty":      s.InitialPenalty,
		"max_penalty":          s.MaxPenalty,
		"simplex_size":         s.SimplexSize,
		"box_penalty":          s.BoxPenalty,
	} {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	if s.MaxIterations < 1 || s.MaxOuter < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "iteration caps must be positive, got %d and %d", s.MaxIterations, s.MaxOuter)
	}
	if !(s.PenaltyGrowth > 1) {
		return errors.New(errors.ErrCodeInvalidInput, "penalty_growth must exceed 1, got %v", s.PenaltyGrowth)
	}
	return nil
}

// trial is what the solver needs from one point: the objective and the
// constraint values. A non-nil error aborts the solve.
type trialFunc func(x []float64) (f float64, c []float64, err error)

// solution is the outcome of a solve.
type solution struct {
	X          []float64
	F          float64
	C          []float64
	Iterations int
	Outer      int
	Converged  bool
	Status     string
}

// augLag minimizes f(x) subject to c(x) ≥ 0 within a box using the
// Powell–Hestenes–Rockafellar augmented Lagrangian. Inner problems run on
// the unit box with gonum's Nelder–Mead; points outside the box are
// evaluated at their projection plus a quadratic penalty.
type augLag struct {
	settings    Settings
	bounds      Bounds
	trial       trialFunc
	onIteration func(x []float64)
}

func (s *augLag) solve(x0 []float64) (*solution, error) {
	u := s.bounds.toUnit(s.bounds.Clamp(x0))
	x, _ := s.bounds.fromUnit(u)
	f, c, err := s.trial(x)
	if err != nil {
		return nil, err
	}

	lambda := make([]float64, len(c))
	rho := s.settings.InitialPenalty
	sol := &solution{X: x, F: f, C: c, Status: "IterationLimit"}
	prevF, prevViol := f, Violation(c)

	for sol.Outer < s.settings.MaxOuter {
		remaining := s.settings.MaxIterations - sol.Iterations
		if remaining <= 0 {
			break
		}
		sol.Outer++

		inner, err := s.inner(u, lambda, rho, remaining, &sol.Iterations)
		if err != nil {
			return sol, err
		}
		step := floats.Distance(u, inner.u, 2)
		u = inner.u
		sol.X, sol.F, sol.C = inner.x, inner.f, inner.c

		// A solve stopped by the budget says nothing about stationarity.
		if inner.status == optimize.IterationLimit {
			break
		}

		viol := Violation(sol.C)
		for i, ci := range sol.C {
			lambda[i] = math.Max(0, lambda[i]-rho*ci)
		}
		stationary := math.Abs(sol.F-prevF) <= s.settings.Tolerance || step < 1e-8
		if viol <= s.settings.ConstraintTolerance && stationary && sol.Outer > 1 {
			sol.Converged, sol.Status = true, "Converged"
			break
		}
		if viol > 0.25*prevViol {
			rho = math.Min(rho*s.settings.PenaltyGrowth, s.settings.MaxPenalty)
		}
		prevF, prevViol = sol.F, viol
	}
	if !sol.Converged && sol.Iterations < s.settings.MaxIterations {
		sol.Status = "OuterLimit"
	}
	return sol, nil
}

type innerResult struct {
	u, x   []float64
	f      float64
	c      []float64
	status optimize.Status
}

func (s *augLag) inner(u0, lambda []float64, rho float64, budget int, iterations *int) (*innerResult, error) {
	var (
		abort error
		best  *innerResult
		bestM = math.Inf(1)
	)
	merit := func(u []float64) float64 {
		if abort != nil {
			return bestM
		}
		x, outside := s.bounds.fromUnit(u)
		f, c, err := s.trial(x)
		if err != nil {
			abort = err
			return bestM
		}
		m := f + s.settings.BoxPenalty*outside
		for i, ci := range c {
			m += phr(ci, lambda[i], rho)
		}
		if m < bestM {
			bestM = m
			best = &innerResult{u: append([]float64(nil), u...), x: x, f: f, c: c}
		}
		return m
	}

	recorded := 0
	onMajor := func(loc *optimize.Location) {
		recorded++
		*iterations++
		if s.onIteration != nil {
			x, _ := s.bounds.fromUnit(loc.X)
			s.onIteration(x)
		}
	}
	rec := &iterationRecorder{abort: &abort, onMajor: onMajor}
	settings := &optimize.Settings{
		MajorIterations: budget,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.settings.Tolerance / 10,
			Iterations: 10 * len(u0),
		},
		Recorder: rec,
	}
	method := &optimize.NelderMead{SimplexSize: s.settings.SimplexSize}

	res, err := optimize.Minimize(optimize.Problem{Func: merit}, append([]float64(nil), u0...), settings, method)
	if abort != nil {
		return nil, abort
	}
	// gonum does not record the major iteration that terminates the run.
	if res != nil {
		for n := min(res.Stats.MajorIterations, budget); recorded < n; {
			onMajor(&res.Location)
		}
	}
	if best == nil {
		if err == nil {
			err = errors.New(errors.ErrCodeInternal, "solver evaluated no points")
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "inner solve")
	}
	best.status = optimize.NotTerminated
	if res != nil {
		best.status = res.Status
	}
	return best, nil
}

// phr is the augmented-Lagrangian term of an inequality c ≥ 0.
func phr(c, lambda, rho float64) float64 {
	if c-lambda/rho <= 0 {
		return -lambda*c + rho/2*c*c
	}
	return -lambda * lambda / (2 * rho)
}

// iterationRecorder forwards solver iterations and stops the run on abort.
type iterationRecorder struct {
	abort   *error
	onMajor func(*optimize.Location)
}

func (r *iterationRecorder) Init() error { return nil }

func (r *iterationRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if *r.abort != nil {
		return *r.abort
	}
	if op == optimize.MajorIteration {
		r.onMajor(loc)
	}
	return nil
}
