package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/cache"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// Runner owns the simulator stack: the caller's simulator, instrumented and
// behind the result cache. Both the CLI and the simulator server use it.
//
// A Runner keeps no per-run state; concurrent calls with different options
// are safe as long as the wrapped simulator is.
type Runner struct {
	Simulator simulator.Simulator
	Cache     cache.Cache
	Logger    *log.Logger
}

// NewRunner wraps sim with instrumentation and caching.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(sim simulator.Simulator, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Simulator: simulator.Cached(simulator.Instrumented(sim), c, keyer, 0),
		Cache:     c,
		Logger:    logger,
	}
}

// Session is an initialized optimizer run.
type Session struct {
	Optimizer *optimizer.Optimizer
	Estimate  *shortcut.Estimate
}

// Optimize runs the search. A session runs once.
func (s *Session) Optimize(ctx context.Context) (*optimizer.Report, error) {
	return s.Optimizer.Run(ctx)
}

// Initialize simulates the base configuration and returns a session holding
// the shortcut estimates.
func (r *Runner) Initialize(ctx context.Context, opts Options) (*Session, error) {
	r.applyLogger(&opts)
	cfg, err := opts.OptimizerConfig(r.Simulator)
	if err != nil {
		return nil, err
	}
	opt, err := optimizer.New(cfg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	est, err := opt.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("initialized",
		"run", opt.State().RunID,
		"mode", opt.Mode().Name(),
		"duration", time.Since(start))
	return &Session{Optimizer: opt, Estimate: est}, nil
}

// Optimize initializes and runs one search.
func (r *Runner) Optimize(ctx context.Context, opts Options) (*optimizer.Report, error) {
	s, err := r.Initialize(ctx, opts)
	if err != nil {
		return nil, err
	}
	report, err := s.Optimize(ctx)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("optimized",
		"converged", report.Converged,
		"iterations", report.Iterations,
		"tac", report.TAC(),
		"duration", report.Elapsed)
	return report, nil
}

// Evaluate simulates, sizes and prices the base configuration of opts.
// Hydraulic margins are always computed, whatever the mode.
func (r *Runner) Evaluate(ctx context.Context, opts Options) (*Design, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return r.EvaluateConfig(ctx, opts, opts.Base)
}

// EvaluateConfig is [Runner.Evaluate] for a configuration other than the
// base one.
func (r *Runner) EvaluateConfig(ctx context.Context, opts Options, cfg column.Configuration) (*Design, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalized()

	start := time.Now()
	res, err := r.Simulator.Simulate(ctx, cfg)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSimulationFailed, err, "simulate")
	}
	d := &Design{Config: cfg, Result: res, SimTime: time.Since(start)}

	if d.Partition, err = column.NewPartition(res, opts.Specs.Main); err != nil {
		return nil, err
	}
	if d.Metrics, err = hydraulics.Evaluate(cfg, res, opts.Hydraulics); err != nil {
		return nil, err
	}
	if d.Cost, err = costing.Evaluate(cfg, res, opts.Costing); err != nil {
		return nil, err
	}
	cons, err := optimizer.NewConstraintSet(opts.Specs, opts.Scales, true, cfg.TrayType)
	if err != nil {
		return nil, err
	}
	if d.Constraints, err = cons.Evaluate(cfg, res, d.Metrics); err != nil {
		return nil, err
	}
	d.Names = cons.Names()

	opts.Logger.Info("evaluated design",
		"stages", cfg.Stages,
		"tac", d.Cost.TAC,
		"diameter", d.Cost.Diameter,
		"failing", len(d.Failing(0)),
		"duration", d.SimTime)
	return d, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
