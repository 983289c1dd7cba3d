package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/observability"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// Config is everything an [Optimizer] needs. Zero-valued tuning fields take
// their package defaults.
type Config struct {
	Simulator simulator.Simulator
	Base      column.Configuration
	Mode      Mode
	Specs     Specs

	Scales     Scales
	Limits     Limits
	Encoding   Encoding
	Settings   Settings
	Penalty    PenaltyPolicy
	Shortcut   shortcut.Params
	Hydraulics hydraulics.Params
	Costing    costing.Params

	// Progress receives one update per solver iteration.
	Progress ProgressFunc
	Logger   *log.Logger
}

// ValidateAndSetDefaults fills defaults and checks the configuration.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Simulator == nil {
		return errors.New(errors.ErrCodeInvalidInput, "optimizer needs a simulator")
	}
	if err := c.Base.Validate(); err != nil {
		return err
	}
	c.Encoding.SetDefaults()
	if c.Mode == nil {
		c.Mode = Hydraulics{Encoding: c.Encoding}
	}
	c.Scales.SetDefaults()
	if err := c.Limits.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := c.Settings.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if c.Penalty.Tolerance == 0 {
		c.Penalty.Tolerance = c.Settings.Tolerance
	}
	if err := c.Shortcut.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := c.Hydraulics.ValidateAndSetDefaults(); err != nil {
		return err
	}
	c.Costing.SetDefaults()
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return nil
}

// Optimizer runs one TAC minimization. It is single-use: after [Optimizer.Run]
// returns it is CLOSED.
type Optimizer struct {
	cfg       Config
	evaluator *Evaluator

	mu       sync.Mutex
	state    State
	estimate *shortcut.Estimate
	anchors  Anchors
	bounds   Bounds
}

// New validates cfg and returns an optimizer in the INITIALIZING phase.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cons, err := NewConstraintSet(cfg.Specs, cfg.Scales, cfg.Mode.Hydraulics(), cfg.Base.TrayType)
	if err != nil {
		return nil, err
	}
	return &Optimizer{
		cfg: cfg,
		evaluator: &Evaluator{
			Simulator:   cfg.Simulator,
			Base:        cfg.Base,
			Mode:        cfg.Mode,
			Constraints: cons,
			Hydraulics:  cfg.Hydraulics,
			Costing:     cfg.Costing,
		},
		state: State{RunID: uuid.NewString(), Phase: PhaseInitializing},
	}, nil
}

// State returns a snapshot of the bookkeeping.
func (o *Optimizer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.state
	s.X = append([]float64(nil), s.X...)
	return s
}

// Constraints returns the constraint set in use.
func (o *Optimizer) Constraints() *ConstraintSet { return o.evaluator.Constraints }

// Mode returns the decision-vector mode.
func (o *Optimizer) Mode() Mode { return o.cfg.Mode }

func (o *Optimizer) setPhase(p Phase) {
	o.mu.Lock()
	o.state.Phase = p
	o.mu.Unlock()
	o.cfg.Logger.Debug("optimizer phase", "run", o.state.RunID, "phase", p)
}

// Initialize simulates the base configuration once and runs the shortcut
// estimates on it. The estimate anchors the reflux bounds and the starting
// stage counts. Failures here are not recoverable.
func (o *Optimizer) Initialize(ctx context.Context) (*shortcut.Estimate, error) {
	if o.estimate != nil {
		return o.estimate, nil
	}
	logger := o.cfg.Logger
	start := time.Now()
	res, err := o.cfg.Simulator.Simulate(ctx, o.cfg.Base.Normalized())
	if err != nil {
		logger.Error("base simulation failed", "err", err)
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSimulationFailed, err, "simulate base configuration")
	}
	o.mu.Lock()
	o.state.SimTime += time.Since(start)
	o.mu.Unlock()

	part, err := column.NewPartition(res, o.cfg.Specs.Main)
	if err != nil {
		return nil, err
	}
	est, err := shortcut.Compute(shortcut.Input{Partition: part}, o.cfg.Shortcut)
	if err != nil {
		return nil, err
	}
	anchors, err := NewAnchors(o.cfg.Base, est, o.cfg.Shortcut.RefluxFactor, o.cfg.Encoding)
	if err != nil {
		return nil, err
	}
	logger.Info("shortcut estimate",
		"light_key", part.LightKey, "heavy_key", part.HeavyKey,
		"n_min", est.MinimumStages, "r_min", est.MinimumReflux,
		"stages", est.ActualStages, "feed", est.FeedStage)

	o.estimate, o.anchors = est, anchors
	o.bounds = o.cfg.Mode.Bounds(anchors, o.cfg.Limits)
	return est, nil
}

// Objective evaluates one trial point and returns TAC/1e6, or the penalty
// when the trial fails. The error is non-nil only when the search must stop.
func (o *Optimizer) Objective(ctx context.Context, x []float64) (float64, error) {
	ev, err := o.evaluate(ctx, x)
	if err == nil {
		return ev.Objective, nil
	}
	last, ok := o.lastObjective()
	return o.cfg.Penalty.Penalty(err, last, ok)
}

func (o *Optimizer) lastObjective() (float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Last == nil {
		return 0, false
	}
	return o.state.Last.Objective, true
}

func (o *Optimizer) evaluate(ctx context.Context, x []float64) (*Evaluation, error) {
	ev, simTime, err := o.evaluator.Evaluate(ctx, x)

	o.mu.Lock()
	o.state.X = append(o.state.X[:0], x...)
	o.state.record(ev, err, simTime, o.cfg.Settings.ConstraintTolerance)
	n := o.state.TotalEvaluations
	o.mu.Unlock()

	if err != nil {
		o.cfg.Logger.Warn("evaluation failed", "eval", n, "x", x, "err", err)
		observability.Optimizer().OnEvaluationFailed(ctx, o.state.RunID, err)
		return nil, err
	}
	o.cfg.Logger.Debug("evaluation", "eval", n, "tac", ev.Cost.TAC, "violation", ev.Violation(), "sim", simTime)
	return ev, nil
}

// trial adapts evaluate to the solver: failed points report the penalty and
// the constraints of the last good point.
func (o *Optimizer) trial(ctx context.Context) trialFunc {
	zero := make([]float64, o.evaluator.Constraints.Len())
	return func(x []float64) (float64, []float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		ev, err := o.evaluate(ctx, x)
		if err == nil {
			return ev.Objective, ev.Constraints, nil
		}
		last, ok := o.lastObjective()
		f, perr := o.cfg.Penalty.Penalty(err, last, ok)
		if perr != nil {
			return 0, nil, perr
		}
		o.mu.Lock()
		c := zero
		if o.state.Last != nil {
			c = o.state.Last.Constraints
		}
		o.mu.Unlock()
		return f, c, nil
	}
}

func (o *Optimizer) onIteration(ctx context.Context, x []float64) {
	o.mu.Lock()
	o.state.Iterations++
	p := Progress{
		RunID:       o.state.RunID,
		Iteration:   o.state.Iterations,
		Evaluations: o.state.Evaluations,
		Names:       o.cfg.Mode.Variables(),
		Values:      o.cfg.Mode.Display(x),
		Err:         o.state.LastErr,
	}
	if o.state.Last != nil {
		p.TAC = o.state.Last.Cost.TAC
		p.Violation = o.state.Last.Violation()
	}
	o.state.Evaluations = 0
	o.mu.Unlock()

	observability.Optimizer().OnIteration(ctx, p.RunID, p.Iteration, p.TAC)
	if o.cfg.Progress != nil {
		o.cfg.Progress(p)
	}
}

// Run performs the whole lifecycle and returns the report. The report is
// returned, with Converged false, whenever the solver ran, even if the final
// materializing simulation failed.
func (o *Optimizer) Run(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	if o.state.Phase != PhaseInitializing {
		o.mu.Unlock()
		return nil, errors.New(errors.ErrCodeInvalidInput, "optimizer run %s already %s", o.state.RunID, o.state.Phase)
	}
	o.state.Started = time.Now()
	o.mu.Unlock()

	hooks := observability.Optimizer()
	hooks.OnRunStart(ctx, o.state.RunID, o.cfg.Mode.Name(), len(o.cfg.Mode.Variables()))

	sol, err := o.run(ctx)
	if err != nil {
		o.setPhase(PhaseClosed)
		hooks.OnRunComplete(ctx, o.state.RunID, o.state.Iterations, false, time.Since(o.state.Started), err)
		return nil, err
	}

	o.setPhase(PhaseReporting)
	report := o.report(ctx, sol)
	o.setPhase(PhaseClosed)
	hooks.OnRunComplete(ctx, o.state.RunID, report.Iterations, report.Converged, report.Elapsed, nil)
	return report, nil
}

func (o *Optimizer) run(ctx context.Context) (*solution, error) {
	if _, err := o.Initialize(ctx); err != nil {
		return nil, err
	}
	o.setPhase(PhaseIterating)
	o.cfg.Logger.Info("optimizing", "run", o.state.RunID, "mode", o.cfg.Mode.Name(),
		"variables", o.cfg.Mode.Variables(), "constraints", o.evaluator.Constraints.Len())

	s := &augLag{
		settings:    o.cfg.Settings,
		bounds:      o.bounds,
		trial:       o.trial(ctx),
		onIteration: func(x []float64) { o.onIteration(ctx, x) },
	}
	sol, err := s.solve(o.cfg.Mode.Start(o.anchors))
	if err != nil {
		return nil, err
	}
	if sol.Converged {
		o.setPhase(PhaseConverged)
	} else {
		o.setPhase(PhaseMaxIterExceeded)
	}
	return sol, nil
}

// report re-simulates the solver's final point so the reported state is
// consistent, falling back to the best trial when that fails.
func (o *Optimizer) report(ctx context.Context, sol *solution) *Report {
	r := &Report{
		RunID:     o.state.RunID,
		Mode:      o.cfg.Mode.Name(),
		Converged: sol.Converged,
		Status:    sol.Status,
		Outer:     sol.Outer,
		Estimate:  o.estimate,
		Names:     o.evaluator.Constraints.Names(),
	}

	final, err := o.evaluate(ctx, sol.X)
	if err != nil {
		o.cfg.Logger.Warn("final simulation failed; reporting best trial", "err", err)
		r.FinalErr = err
		r.Converged = false
		final = o.State().Best
	}
	r.Final = final
	if r.Converged && (final == nil || !final.Feasible(o.cfg.Settings.ConstraintTolerance)) {
		r.Converged, r.Status = false, "Infeasible"
	}

	st := o.State()
	r.Iterations = st.Iterations
	r.Evaluations = st.TotalEvaluations
	r.Failures = st.Failures
	r.SimTime = st.SimTime
	r.Elapsed = time.Since(st.Started)
	return r
}
