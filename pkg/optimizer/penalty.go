package optimizer

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
)

// Evaluation steps reported by [EvaluationError].
const (
	StepDecode      = "decode"
	StepSimulate    = "simulate"
	StepHydraulics  = "hydraulics"
	StepCosting     = "costing"
	StepConstraints = "constraints"
)

// EvaluationError is a failed trial point.
type EvaluationError struct {
	Step string
	X    []float64
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s at x=%.6g: %v", e.Step, e.X, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// DefaultFallback is the penalty before any trial has succeeded. It is
// TAC/1e6, so it stands for $1e9/yr.
const DefaultFallback = 1e3

// PenaltyPolicy replaces the objective of a failed trial.
type PenaltyPolicy struct {
	// Tolerance is the solver tolerance; a failed trial costs the last good
	// objective plus twice this.
	Tolerance float64

	// Fallback is used until a trial has succeeded.
	Fallback float64
}

// Penalty returns the objective to report for a trial that failed with err.
// last is the most recent successful objective, valid when ok is set.
// Cancellation is not absorbed: it comes back as the error so the search
// stops. The returned penalty is always finite.
func (p PenaltyPolicy) Penalty(err error, last float64, ok bool) (float64, error) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return 0, err
	}
	fallback := p.Fallback
	if !(fallback > 0) || math.IsInf(fallback, 0) {
		fallback = DefaultFallback
	}
	if !ok || math.IsNaN(last) || math.IsInf(last, 0) {
		return fallback, nil
	}
	return last + 2*p.Tolerance, nil
}
