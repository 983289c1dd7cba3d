package optimizer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Phase is the lifecycle state of an [Optimizer].
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseIterating
	PhaseConverged
	PhaseMaxIterExceeded
	PhaseReporting
	PhaseClosed
)

var phaseNames = [...]string{
	PhaseInitializing:    "INITIALIZING",
	PhaseIterating:       "ITERATING",
	PhaseConverged:       "CONVERGED",
	PhaseMaxIterExceeded: "MAX-ITER-EXCEEDED",
	PhaseReporting:       "REPORTING",
	PhaseClosed:          "CLOSED",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// State is the bookkeeping of a run.
type State struct {
	RunID string
	Phase Phase

	// X is the latest trial point.
	X []float64

	// Evaluations counts trials since the last solver iteration.
	Evaluations      int
	TotalEvaluations int
	Failures         int
	Iterations       int

	// SimTime is the wall-clock time spent inside the simulator.
	SimTime time.Duration
	Started time.Time

	// Last is the latest successful trial and LastErr the error of the
	// latest trial, nil when it succeeded.
	Last    *Evaluation
	LastErr error

	// Best is the lowest-objective feasible trial, or the least infeasible
	// one while none is feasible.
	Best *Evaluation
}

func (s *State) record(ev *Evaluation, err error, simTime time.Duration, tol float64) {
	s.Evaluations++
	s.TotalEvaluations++
	s.SimTime += simTime
	s.LastErr = err
	if err != nil {
		s.Failures++
		return
	}
	s.Last = ev
	if better(ev, s.Best, tol) {
		s.Best = ev
	}
}

// better orders trials by feasibility, then objective.
func better(a, b *Evaluation, tol float64) bool {
	if b == nil {
		return true
	}
	fa, fb := a.Feasible(tol), b.Feasible(tol)
	switch {
	case fa && !fb:
		return true
	case !fa && fb:
		return false
	case !fa && !fb:
		return a.Violation() < b.Violation()
	}
	return a.Objective < b.Objective
}

// =============================================================================
// Progress
// =============================================================================

// Progress is emitted once per solver iteration.
type Progress struct {
	RunID       string
	Iteration   int
	Evaluations int // trials in this iteration
	Names       []string
	Values      []float64 // decision values with stages decoded
	TAC         float64   // $/yr of the latest successful trial
	Violation   float64
	Err         error // set when the latest trial failed
}

// ProgressFunc receives progress updates.
type ProgressFunc func(Progress)

// ProgressPrinter writes one tabular line per iteration to w, preceded by a
// header. A failed latest trial shows ERROR in place of the TAC.
func ProgressPrinter(w io.Writer) ProgressFunc {
	header := false
	return func(p Progress) {
		if !header {
			fmt.Fprintln(w, progressHeader(p.Names))
			header = true
		}
		fmt.Fprintln(w, ProgressLine(p))
	}
}

func progressHeader(names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%5s %5s", "iter", "evals")
	for _, n := range names {
		fmt.Fprintf(&b, " %9s", n)
	}
	fmt.Fprintf(&b, " %14s %9s", "TAC $/yr", "viol")
	return b.String()
}

// ProgressLine formats one progress update.
func ProgressLine(p Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%5d %5d", p.Iteration, p.Evaluations)
	for i, v := range p.Values {
		if i < len(p.Names) && (p.Names[i] == "N" || p.Names[i] == "NF") {
			fmt.Fprintf(&b, " %9d", int(v))
			continue
		}
		fmt.Fprintf(&b, " %9.4g", v)
	}
	if p.Err != nil {
		fmt.Fprintf(&b, " %14s %9s", "ERROR", "-")
	} else {
		fmt.Fprintf(&b, " %14.0f %9.3g", p.TAC, p.Violation)
	}
	return b.String()
}
