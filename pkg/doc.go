// Package pkg provides the libraries behind distopt, a cost optimizer for
// distillation columns.
//
// # Overview
//
// A design case names a column (stages, feed stage, reflux ratio,
// pressures, tray spacing and type), its feed and its product
// specifications. distopt simulates the column, sizes its trays, prices it
// and searches for the configuration of least total annualized cost (TAC)
// that still meets the specifications and keeps every tray inside its
// hydraulic operating window.
//
// # Architecture
//
// The data flow for one trial design:
//
//	column.Configuration
//	         ↓
//	    [simulator] (rigorous or surrogate stage-by-stage results)
//	         ↓
//	    [column] Partition (light/heavy keys, purity, recovery)
//	         ↓
//	    [hydraulics] (tray sizing and operating margins)
//	         ↓
//	    [costing] (capital, utilities, TAC)
//	         ↓
//	    [optimizer] (constraints, penalties, augmented Lagrangian search)
//
// # Main Packages
//
// ## Domain
//
// [column] - Configurations, pressure profiles, simulation results and the
// key-component partition of a product split.
//
// [correlation] - Closed-form fits of the published tray design charts
// used by the sieve and bubble-cap sizing.
//
// [shortcut] - Fenske, Underwood, Gilliland and Kirkbride estimates that
// seed a search and bound its stage counts.
//
// [hydraulics] - Sieve and bubble-cap tray sizing with weeping,
// entrainment, flooding, backup, residence and slot margins.
//
// [costing] - Column shell, tray and exchanger capital plus steam and
// cooling-water operating cost.
//
// [optimizer] - Decision encodings, the three optimization modes, the
// constraint set, penalty handling and the solver.
//
// ## Simulation
//
// [simulator] - The Simulator interface with instrumented and cached
// decorators. [simulator/surrogate] is an in-process short-cut model;
// [simulator/remote] speaks JSON over HTTP to an external simulator.
//
// ## Infrastructure
//
// [pipeline] - Options and the Runner used by the CLI: evaluate, initialize
// and optimize a case with caching and logging wired in.
//
// [config] - TOML case files.
//
// [cache] - File, Redis and null caches for simulation results.
//
// [httputil] - HTTP client with timeouts and retry.
//
// [observability] - Hooks for runs, simulations, cache and HTTP traffic.
//
// [errors] - Coded errors and input validation.
//
// # Quick Start
//
//	c, _ := config.Load("benzene_toluene.toml")
//	opts, _ := c.Options()
//	sim, _ := c.NewSurrogate()
//
//	runner := pipeline.NewRunner(sim, cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	report, _ := runner.Optimize(ctx, opts)
//	report.WriteText(os.Stdout)
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/optimizer/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [column]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/column
// [correlation]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/correlation
// [shortcut]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut
// [hydraulics]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics
// [costing]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/costing
// [optimizer]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer
// [simulator]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/simulator
// [simulator/surrogate]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/surrogate
// [simulator/remote]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/remote
// [pipeline]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/config
// [cache]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/observability
// [errors]: https://pkg.go.dev/github.com/kelvinchanwh/distillation-optimizer/pkg/errors
package pkg
