// Package optimizer searches for the column configuration with the lowest
// total annualized cost.
//
// # Overview
//
// An [Optimizer] wraps a black-box [simulator.Simulator]. Each trial point
// is decoded into a [column.Configuration], simulated, sized by the
// hydraulics package and priced by the costing package. The objective is the
// TAC in millions of dollars per year. Failed trials never abort the search:
// [PenaltyPolicy] turns them into a finite value just above the last good
// objective.
//
// # Modes
//
// The shape of the decision vector is chosen once through a [Mode]:
//
//   - [ConstPressure]: condenser pressure, one per-stage drop, reflux ratio
//     and the two stage fractions
//   - [SplitPressure]: as ConstPressure with separate rectifying and
//     stripping drops
//   - [Hydraulics]: SplitPressure plus tray spacing, with every hydraulic
//     margin of both sections added to the constraints
//
// Stage count and feed stage are continuous fractions decoded with
// [Encoding]: round(x·50) stages and round(x·51) for the feed stage.
//
// # Solver
//
// Constraints are "≥ 0 passes" and are handled by an augmented Lagrangian
// whose inner problems are solved by gonum's Nelder–Mead on the unit box.
// Every solver iteration increments the iteration counter, resets the
// per-iteration evaluation counter and emits a [Progress] line. The run
// stops on a feasible, stationary outer iterate or on the iteration cap.
//
// # Lifecycle
//
//	INITIALIZING → ITERATING → CONVERGED | MAX-ITER-EXCEEDED → REPORTING → CLOSED
//
// See [Phase].
package optimizer
