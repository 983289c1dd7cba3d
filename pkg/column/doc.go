// Package column defines the data model shared by the simulator boundary, the
// hydraulics and costing engine, the shortcut initializer and the optimizer.
//
// # Configuration
//
// A [Configuration] holds the manipulated variables of one column design:
// condenser pressure, per-section pressure drops, reflux ratio, stage count,
// feed stage, tray spacing, per-section efficiency, liquid passes and
// [TrayType]. It is a plain value. Optimizer trials build a fresh one for every
// candidate and never mutate a configuration that has already been simulated.
//
// Stages are numbered from 1 (condenser) to N (reboiler). The rectifying
// section ends above the feed stage and the stripping section starts at it;
// [CheckStagePressure] enforces that the two sections do not overlap and floors
// pressure drops at [MinPressureDrop] so that downstream formulas never divide
// by an exact zero.
//
// # Simulation results
//
// A [SimulationResult] is owned by exactly one simulator run. Simulators return
// a new value per call; consumers read it and discard it. Use
// [SimulationResult.Clone] when a copy must outlive the call.
//
// # Partition
//
// [NewPartition] derives key components, purity and recovery from a result.
// The designated main component is the light key; the heavy key is the
// component with the next lower K-value. Everything more volatile than the
// light key is a light non-key and everything less volatile than the heavy key
// is a heavy non-key.
package column
