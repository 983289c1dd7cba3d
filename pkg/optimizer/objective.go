package optimizer

import (
	"context"
	"math"
	"time"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// TACScale converts $/yr into objective units.
const TACScale = 1e6

// Evaluation is one successful trial.
type Evaluation struct {
	X           []float64                `json:"x"`
	Config      column.Configuration     `json:"config"`
	Result      *column.SimulationResult `json:"-"`
	Metrics     *hydraulics.Metrics      `json:"metrics,omitempty"`
	Cost        *costing.Breakdown       `json:"cost"`
	Objective   float64                  `json:"objective"` // TAC / 1e6
	Constraints []float64                `json:"constraints"`
	SimTime     time.Duration            `json:"sim_time"`
}

// Violation is the largest constraint shortfall.
func (e *Evaluation) Violation() float64 { return Violation(e.Constraints) }

// Feasible reports whether every constraint holds to within tol.
func (e *Evaluation) Feasible(tol float64) bool { return e.Violation() <= tol }

// Evaluator turns a decision vector into an [Evaluation].
type Evaluator struct {
	Simulator   simulator.Simulator
	Base        column.Configuration
	Mode        Mode
	Constraints *ConstraintSet
	Hydraulics  hydraulics.Params
	Costing     costing.Params
}

// Evaluate decodes, simulates, sizes and prices x. Failures come back as
// *[EvaluationError]. The duration is the time spent in the simulator, also
// for failed trials.
func (e *Evaluator) Evaluate(ctx context.Context, x []float64) (*Evaluation, time.Duration, error) {
	fail := func(step string, err error) error {
		return &EvaluationError{Step: step, X: append([]float64(nil), x...), Err: err}
	}

	cfg, err := e.Mode.Configure(x, e.Base)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, 0, fail(StepDecode, err)
	}
	cfg = cfg.Normalized()

	start := time.Now()
	res, err := e.Simulator.Simulate(ctx, cfg)
	simTime := time.Since(start)
	if err != nil {
		return nil, simTime, fail(StepSimulate, err)
	}

	ev := &Evaluation{X: append([]float64(nil), x...), Config: cfg, Result: res, SimTime: simTime}
	if e.Mode.Hydraulics() {
		if ev.Metrics, err = hydraulics.Evaluate(cfg, res, e.Hydraulics); err != nil {
			return nil, simTime, fail(StepHydraulics, err)
		}
	}
	if ev.Cost, err = costing.Evaluate(cfg, res, e.Costing); err != nil {
		return nil, simTime, fail(StepCosting, err)
	}
	ev.Objective = ev.Cost.TAC / TACScale
	if math.IsNaN(ev.Objective) || math.IsInf(ev.Objective, 0) {
		return nil, simTime, fail(StepCosting, errors.New(errors.ErrCodeNumerical, "TAC is %v", ev.Cost.TAC))
	}
	if ev.Constraints, err = e.Constraints.Evaluate(cfg, res, ev.Metrics); err != nil {
		return nil, simTime, fail(StepConstraints, err)
	}
	return ev, simTime, nil
}
